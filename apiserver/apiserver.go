package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const gracefulShutdownTimeout = 30 * time.Second

// Start starts the read-only admin HTTP server and returns a function to
// gracefully shut it down.
func Start(listenAddr string, server *Server) func() {
	router := mux.NewRouter()
	server.addRoutes(router)
	httpServer := &http.Server{Addr: listenAddr, Handler: router}
	spawn(func() {
		log.Errorf("%s", httpServer.ListenAndServe())
	})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(ctx)
		if err != nil {
			log.Errorf("Error shutting down the admin API server: %s", err)
		}
	}
}
