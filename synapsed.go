package main

import (
	"fmt"
	"os"

	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jinzhu/gorm/dialects/mysql"

	"github.com/kyprware/synapse/apiserver"
	"github.com/kyprware/synapse/config"
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/database"
	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/hub"
	"github.com/kyprware/synapse/jwtauth"
	"github.com/kyprware/synapse/logger"
	"github.com/kyprware/synapse/rpc"
	"github.com/kyprware/synapse/signal"
	"github.com/kyprware/synapse/tokenvault"
	"github.com/kyprware/synapse/util/panics"
)

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if cfg.Migrate {
		err := database.Migrate(cfg)
		if err != nil {
			log.Errorf("Error migrating the database: %s", err)
			os.Exit(1)
		}
		return
	}

	err = database.Connect(cfg)
	if err != nil {
		log.Errorf("Error connecting to the database: %s", err)
		os.Exit(1)
	}
	defer func() {
		err := database.Close()
		if err != nil {
			log.Errorf("Error closing the database: %s", err)
		}
	}()

	vault, err := tokenvault.New(cfg.FernetKey)
	if err != nil {
		log.Errorf("Error initializing the token vault: %s", err)
		os.Exit(1)
	}
	verifier, err := jwtauth.NewVerifier(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Errorf("Error initializing the session token verifier: %s", err)
		os.Exit(1)
	}

	repository := dbaccess.NewDatabaseRepository()
	registry := connregistry.NewRegistry()
	rpcContext := rpc.NewContext(repository, registry, vault, verifier)

	hubServer := hub.New(cfg, rpcContext, registry)
	err = hubServer.Start()
	if err != nil {
		log.Errorf("Error starting the hub: %s", err)
		os.Exit(1)
	}
	defer hubServer.Stop()

	shutdownAPIServer := apiserver.Start(cfg.APIListen, apiserver.NewServer(repository))
	defer shutdownAPIServer()

	interrupt := signal.InterruptListener()
	<-interrupt
}
