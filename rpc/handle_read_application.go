package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/wire"
)

// handleReadApplication handles read_application commands.
func handleReadApplication(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	appID, rpcErr := stringParam(params, "id")
	if rpcErr != nil {
		return nil, rpcErr
	}

	application := context.Repository.FindApplicationByID(appID)
	if application == nil {
		return nil, &wire.RPCError{
			Code:    wire.ErrReadApplication,
			Message: fmt.Sprintf("Application '%s' not found", appID),
		}
	}
	return application, nil
}
