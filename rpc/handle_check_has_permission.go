package rpc

import (
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/wire"
)

// handleCheckHasPermission handles check_has_permission commands.
func handleCheckHasPermission(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	ownerID, targetID, action, rpcErr := permissionTripleParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	activeOnly, rpcErr := optionalBoolParam(params, "active_only", true)
	if rpcErr != nil {
		return nil, rpcErr
	}

	permissions := context.Repository.FindPermissions(&dbaccess.PermissionFilter{
		OwnerID:    &ownerID,
		TargetID:   &targetID,
		Action:     &action,
		ActiveOnly: activeOnly,
	}, nil)

	return map[string]interface{}{
		"has_permission": len(permissions) > 0,
	}, nil
}
