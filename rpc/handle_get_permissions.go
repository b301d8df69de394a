package rpc

import (
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/dbmodels"
	"github.com/kyprware/synapse/wire"
)

// handleGetPermissionsForOwner handles get_permissions_for_owner commands.
func handleGetPermissionsForOwner(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	ownerID, rpcErr := stringParam(params, "owner_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return listPermissions(context, params, &dbaccess.PermissionFilter{OwnerID: &ownerID})
}

// handleGetPermissionsForTarget handles get_permissions_for_target commands.
func handleGetPermissionsForTarget(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	targetID, rpcErr := stringParam(params, "target_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return listPermissions(context, params, &dbaccess.PermissionFilter{TargetID: &targetID})
}

func listPermissions(context *Context, params map[string]interface{},
	filter *dbaccess.PermissionFilter) (interface{}, *wire.RPCError) {

	activeOnly, rpcErr := optionalBoolParam(params, "active_only", false)
	if rpcErr != nil {
		return nil, rpcErr
	}
	skip, rpcErr := optionalIntParam(params, "skip", 0)
	if rpcErr != nil {
		return nil, rpcErr
	}
	limit, rpcErr := optionalIntParam(params, "limit", 0)
	if rpcErr != nil {
		return nil, rpcErr
	}

	filter.ActiveOnly = activeOnly
	permissions := context.Repository.FindPermissions(filter,
		&dbaccess.QueryOptions{Skip: skip, Limit: limit})
	if permissions == nil {
		permissions = []*dbmodels.ApplicationPermission{}
	}
	return permissions, nil
}
