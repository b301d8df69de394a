package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/wire"
)

// handleDeleteApplication handles delete_application commands. Deletion
// cascades to every permission owned by or targeting the application.
func handleDeleteApplication(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	appID, rpcErr := stringParam(params, "id")
	if rpcErr != nil {
		return nil, rpcErr
	}

	if !context.Repository.DeleteApplication(appID) {
		return nil, &wire.RPCError{
			Code:    wire.ErrDeleteApplication,
			Message: fmt.Sprintf("Failed to delete application '%s'", appID),
		}
	}
	return map[string]interface{}{"success": true}, nil
}
