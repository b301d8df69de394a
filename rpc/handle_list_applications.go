package rpc

import (
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/dbmodels"
	"github.com/kyprware/synapse/wire"
)

// handleListApplications handles list_applications commands.
func handleListApplications(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

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

	applications := context.Repository.FindApplications(
		&dbaccess.ApplicationFilter{ActiveOnly: activeOnly},
		&dbaccess.QueryOptions{Skip: skip, Limit: limit},
	)
	if applications == nil {
		applications = []*dbmodels.Application{}
	}
	return applications, nil
}
