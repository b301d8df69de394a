package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbmodels"
	"github.com/kyprware/synapse/wire"
)

// handleGrantPermission handles grant_permission commands. Self-permissions
// and two-cycles are rejected; the repository enforces uniqueness and
// referential integrity on top.
func handleGrantPermission(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	ownerID, targetID, action, rpcErr := permissionTripleParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if ownerID == targetID {
		log.Warnf("Cannot grant permission to self: '%s'", ownerID)
		return nil, &wire.RPCError{
			Code:    wire.ErrGrantPermission,
			Message: "Failed to grant permission",
		}
	}

	permission := context.Repository.GrantPermission(ownerID, targetID, action)
	if permission == nil {
		return nil, &wire.RPCError{
			Code:    wire.ErrGrantPermission,
			Message: "Failed to grant permission",
		}
	}
	return permission, nil
}

// permissionTripleParams extracts the (owner, target, action) triple shared
// by the permission commands.
func permissionTripleParams(params map[string]interface{}) (ownerID, targetID string,
	action dbmodels.Action, rpcErr *wire.RPCError) {

	ownerID, rpcErr = stringParam(params, "owner_id")
	if rpcErr != nil {
		return "", "", "", rpcErr
	}
	targetID, rpcErr = stringParam(params, "target_id")
	if rpcErr != nil {
		return "", "", "", rpcErr
	}
	rawAction, rpcErr := stringParam(params, "action")
	if rpcErr != nil {
		return "", "", "", rpcErr
	}

	action, err := dbmodels.ParseAction(rawAction)
	if err != nil {
		return "", "", "", &wire.RPCError{
			Code:    wire.ErrInvalidAction,
			Message: fmt.Sprintf("Invalid action: %s", rawAction),
		}
	}
	return ownerID, targetID, action, nil
}
