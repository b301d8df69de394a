package apiserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kyprware/synapse/dbaccess"
)

const routeParamAppID = "appID"

const (
	queryParamSkip  = "skip"
	queryParamLimit = "limit"
)

const defaultListLimit = 100

// Server serves the read-only admin view over the repository. All writes go
// through the hub's RPC surface.
type Server struct {
	repository dbaccess.Repository
}

// NewServer returns an admin API server over the given repository.
func NewServer(repository dbaccess.Repository) *Server {
	return &Server{repository: repository}
}

func makeHandler(handler func(routeParams map[string]string,
	queryParams map[string][]string) (interface{}, *handlerError)) func(http.ResponseWriter, *http.Request) {

	return func(w http.ResponseWriter, r *http.Request) {
		response, hErr := handler(mux.Vars(r), r.URL.Query())
		if hErr != nil {
			sendErr(w, hErr)
			return
		}
		sendJSONResponse(w, response)
	}
}

func sendErr(w http.ResponseWriter, hErr *handlerError) {
	log.Warnf("got error: %s", hErr)
	w.WriteHeader(hErr.Code)
	sendJSONResponse(w, hErr)
}

func sendJSONResponse(w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Errorf("Error sending a response: %s", err)
	}
}

func (s *Server) addRoutes(router *mux.Router) {
	router.HandleFunc("/", makeHandler(s.mainHandler))

	router.HandleFunc("/applications", makeHandler(s.listApplicationsHandler)).
		Methods("GET")

	router.HandleFunc(
		fmt.Sprintf("/application/{%s}", routeParamAppID),
		makeHandler(s.getApplicationHandler)).
		Methods("GET")

	router.HandleFunc("/permissions", makeHandler(s.listPermissionsHandler)).
		Methods("GET")
}

func (s *Server) mainHandler(_ map[string]string, _ map[string][]string) (interface{}, *handlerError) {
	return "Synapse admin API is running", nil
}

func (s *Server) getApplicationHandler(routeParams map[string]string,
	_ map[string][]string) (interface{}, *handlerError) {

	application := s.repository.FindApplicationByID(routeParams[routeParamAppID])
	if application == nil {
		return nil, newHandlerError(http.StatusNotFound,
			"No application with the given ID was found.")
	}
	return application, nil
}

func (s *Server) listApplicationsHandler(_ map[string]string,
	queryParams map[string][]string) (interface{}, *handlerError) {

	skip, limit, hErr := pagingParams(queryParams)
	if hErr != nil {
		return nil, hErr
	}
	return s.repository.FindApplications(nil,
		&dbaccess.QueryOptions{Order: "id", Skip: skip, Limit: limit}), nil
}

func (s *Server) listPermissionsHandler(_ map[string]string,
	queryParams map[string][]string) (interface{}, *handlerError) {

	skip, limit, hErr := pagingParams(queryParams)
	if hErr != nil {
		return nil, hErr
	}
	return s.repository.FindPermissions(nil,
		&dbaccess.QueryOptions{Order: "id", Skip: skip, Limit: limit}), nil
}

func pagingParams(queryParams map[string][]string) (skip, limit int, hErr *handlerError) {
	skip = 0
	limit = defaultListLimit
	if values := queryParams[queryParamSkip]; len(values) == 1 {
		var err error
		skip, err = strconv.Atoi(values[0])
		if err != nil {
			return 0, 0, newHandlerError(http.StatusUnprocessableEntity,
				fmt.Sprintf("Couldn't parse the '%s' query parameter: %s", queryParamSkip, err))
		}
	}
	if values := queryParams[queryParamLimit]; len(values) == 1 {
		var err error
		limit, err = strconv.Atoi(values[0])
		if err != nil {
			return 0, 0, newHandlerError(http.StatusUnprocessableEntity,
				fmt.Sprintf("Couldn't parse the '%s' query parameter: %s", queryParamLimit, err))
		}
	}
	return skip, limit, nil
}

// handlerError is an error returned from a route handler.
type handlerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (hErr *handlerError) Error() string {
	return hErr.Message
}

func newHandlerError(code int, message string) *handlerError {
	return &handlerError{
		Code:    code,
		Message: message,
	}
}
