package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/wire"
)

// HandlerFunc handles a single dispatched request. It receives the caller's
// connection (nil until the handshake completes) and the request's params,
// and returns a result or an RPC error object.
type HandlerFunc func(context *Context, connection *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError)

// rpcHandlers maps RPC method strings to appropriate handler functions. This
// is set by init from rpcHandlersBeforeInit so that handlers may refer to the
// map without a dependency loop.
var rpcHandlers map[string]HandlerFunc
var rpcHandlersBeforeInit = map[string]HandlerFunc{
	"connect":                    handleConnect,
	"register":                   handleConnect,
	"create_application":         handleCreateApplication,
	"read_application":           handleReadApplication,
	"list_applications":          handleListApplications,
	"update_application":         handleUpdateApplication,
	"delete_application":         handleDeleteApplication,
	"grant_permission":           handleGrantPermission,
	"revoke_permission":          handleRevokePermission,
	"check_has_permission":       handleCheckHasPermission,
	"get_permissions_for_owner":  handleGetPermissionsForOwner,
	"get_permissions_for_target": handleGetPermissionsForTarget,
}

func init() {
	rpcHandlers = make(map[string]HandlerFunc, len(rpcHandlersBeforeInit))
	for method, handler := range rpcHandlersBeforeInit {
		rpcHandlers[method] = handler
	}
}

// RegisterHandler registers a handler for the given method name. The last
// registration wins.
func RegisterHandler(method string, handler HandlerFunc) {
	if _, ok := rpcHandlers[method]; ok {
		log.Debugf("Replacing registered RPC method: %s", method)
	} else {
		log.Debugf("Registered RPC method: %s", method)
	}
	rpcHandlers[method] = handler
}

// lookupHandler retrieves a registered handler by method name.
func lookupHandler(method string) (HandlerFunc, bool) {
	handler, ok := rpcHandlers[method]
	return handler, ok
}

// IsHandshakeMethod reports whether method is admissible as the first request
// of a session.
func IsHandshakeMethod(method string) bool {
	return method == "connect" || method == "register"
}

// Dispatch routes a request to its handler and wraps the outcome in a
// response reusing the request's id. A missing handler, a params mismatch,
// and a handler panic surface as the standard JSON-RPC error codes.
func Dispatch(context *Context, connection *connregistry.Connection, request *wire.Request) *wire.Response {
	requestID := request.ID

	handler, ok := lookupHandler(request.Method)
	if !ok {
		log.Warnf("Unknown method: %s", request.Method)
		return wire.NewErrorResponse(&requestID, &wire.RPCError{
			Code:    wire.ErrMethodNotFound,
			Message: fmt.Sprintf("Method '%s' not found", request.Method),
		})
	}

	result, rpcErr := invokeHandler(context, connection, handler, request)
	if rpcErr != nil {
		return wire.NewErrorResponse(&requestID, rpcErr)
	}
	return wire.NewResponse(&requestID, result)
}

// DispatchBatch dispatches each request in order and collects the responses.
func DispatchBatch(context *Context, connection *connregistry.Connection,
	requests []*wire.Request) []*wire.Response {

	responses := make([]*wire.Response, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, Dispatch(context, connection, request))
	}
	return responses
}

// invokeHandler runs the handler with panic containment so that an unexpected
// failure becomes an internal error response instead of tearing the session
// down.
func invokeHandler(context *Context, connection *connregistry.Connection, handler HandlerFunc,
	request *wire.Request) (result interface{}, rpcErr *wire.RPCError) {

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Exception in '%s': %v", request.Method, r)
			result = nil
			rpcErr = &wire.RPCError{
				Code:    wire.ErrInternal,
				Message: fmt.Sprintf("Internal error: %v", r),
			}
		}
	}()

	params := request.Params
	if params == nil {
		params = map[string]interface{}{}
	}
	return handler(context, connection, params)
}
