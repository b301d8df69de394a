package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/wire"
)

// handleUpdateApplication handles update_application commands. Only the
// whitelisted fields are applied; an authentication token update passes
// through the vault so the stored value stays encrypted at rest.
func handleUpdateApplication(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	appID, rpcErr := stringParam(params, "id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	updates, rpcErr := objectParam(params, "updates")
	if rpcErr != nil {
		return nil, rpcErr
	}

	if rawToken, ok := updates["authentication_token"]; ok && rawToken != nil {
		token, ok := rawToken.(string)
		if !ok {
			return nil, invalidParams("parameter 'authentication_token' must be a string")
		}
		encrypted, err := context.Vault.Encrypt(token)
		if err != nil {
			log.Errorf("Couldn't encrypt authentication token: %s", err)
			return nil, &wire.RPCError{
				Code:    wire.ErrUpdateApplication,
				Message: fmt.Sprintf("Failed to update application '%s'", appID),
			}
		}
		updates["authentication_token"] = encrypted
	}

	updated := context.Repository.UpdateApplication(appID, updates)
	if updated == nil {
		return nil, &wire.RPCError{
			Code:    wire.ErrUpdateApplication,
			Message: fmt.Sprintf("Failed to update application '%s'", appID),
		}
	}
	return updated, nil
}
