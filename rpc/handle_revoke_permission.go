package rpc

import (
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/wire"
)

// handleRevokePermission handles revoke_permission commands. The permission
// is addressed either by its id or by the (owner, target, action) triple.
func handleRevokePermission(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	permissionID, rpcErr := optionalStringParam(params, "permission_id")
	if rpcErr != nil {
		return nil, rpcErr
	}

	revoked := false
	if permissionID != nil {
		revoked = context.Repository.RevokePermissionByID(*permissionID)
	} else {
		ownerID, targetID, action, rpcErr := permissionTripleParams(params)
		if rpcErr != nil {
			return nil, rpcErr
		}
		revoked = context.Repository.RevokePermission(ownerID, targetID, action)
	}

	if !revoked {
		return nil, &wire.RPCError{
			Code:    wire.ErrRevokePermission,
			Message: "Failed to revoke permission",
		}
	}
	return map[string]interface{}{"success": true}, nil
}
