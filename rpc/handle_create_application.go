package rpc

import (
	"net/url"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbmodels"
	"github.com/kyprware/synapse/wire"
)

// handleCreateApplication handles create_application commands. The
// authentication token, when given, is encrypted before it is persisted.
func handleCreateApplication(context *Context, _ *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	rawURL, rpcErr := stringParam(params, "url")
	if rpcErr != nil {
		return nil, rpcErr
	}
	description, rpcErr := optionalStringParam(params, "description")
	if rpcErr != nil {
		return nil, rpcErr
	}
	token, rpcErr := optionalStringParam(params, "authentication_token")
	if rpcErr != nil {
		return nil, rpcErr
	}
	name, rpcErr := optionalStringParam(params, "name")
	if rpcErr != nil {
		return nil, rpcErr
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &wire.RPCError{
			Code:    wire.ErrCreateApplication,
			Message: "Application URL must carry a scheme and a host",
		}
	}

	application := &dbmodels.Application{
		URL:         rawURL,
		Description: description,
		IsActive:    true,
	}
	if name != nil {
		application.Name = *name
	}
	if token != nil {
		encrypted, err := context.Vault.Encrypt(*token)
		if err != nil {
			log.Errorf("Couldn't encrypt authentication token: %s", err)
			return nil, &wire.RPCError{
				Code:    wire.ErrCreateApplication,
				Message: "Failed to create application",
			}
		}
		application.AuthenticationToken = &encrypted
	}

	created := context.Repository.CreateApplication(application)
	if created == nil {
		return nil, &wire.RPCError{
			Code:    wire.ErrCreateApplication,
			Message: "Failed to create application",
		}
	}
	return created, nil
}
