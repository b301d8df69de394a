package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/wire"
)

// handleConnect handles connect and register commands. It verifies the
// caller's session token, binds the handshake writer to the application in
// the connection registry, and reports the bound connection id.
func handleConnect(context *Context, connection *connregistry.Connection,
	params map[string]interface{}) (interface{}, *wire.RPCError) {

	appID, rpcErr := stringParam(params, "id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	token, rpcErr := stringParam(params, "authentication_token")
	if rpcErr != nil {
		return nil, rpcErr
	}

	claims, err := context.Verifier.VerifyToken(token)
	if err != nil {
		log.Errorf("Error connecting application %s: %s", appID, err)
		return nil, &wire.RPCError{
			Code:    wire.ErrInternal,
			Message: "Authentication token is invalid or expired",
		}
	}
	if claims.ApplicationID != appID {
		log.Errorf("Application %s presented a token issued to %s", appID, claims.ApplicationID)
		return nil, &wire.RPCError{
			Code:    wire.ErrInternal,
			Message: "Authentication token is invalid or expired",
		}
	}

	application := context.Repository.FindApplicationByID(appID)
	if application == nil {
		return nil, &wire.RPCError{
			Code:    wire.ErrInternal,
			Message: fmt.Sprintf("Application '%s' is not registered", appID),
		}
	}
	if !application.IsActive {
		return nil, &wire.RPCError{
			Code:    wire.ErrInternal,
			Message: fmt.Sprintf("Application '%s' is not active", appID),
		}
	}

	registered := connregistry.New(appID, connection.Writer(), claims)
	err = context.Registry.Add(registered)
	if err != nil {
		log.Errorf("Error connecting application %s: %s", appID, err)
		return nil, &wire.RPCError{
			Code:    wire.ErrInternal,
			Message: fmt.Sprintf("Failed to connect application: %s", err),
		}
	}

	log.Infof("Application %s connected successfully", appID)
	return map[string]interface{}{
		"connection_id": appID,
		"message":       "Application connected successfully",
	}, nil
}
