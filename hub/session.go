package hub

import (
	"fmt"
	"io"
	"net"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbmodels"
	"github.com/kyprware/synapse/logger"
	"github.com/kyprware/synapse/rpc"
	"github.com/kyprware/synapse/wire"
)

// session drives one connection through its lifecycle: handshake, framed
// dispatch, teardown. It owns the reads; all writes to its own connection go
// through deliverToSender so they stay ordered with emissions.
type session struct {
	hub  *Hub
	conn net.Conn

	// connection is the registered connection, nil until the handshake
	// succeeds.
	connection *connregistry.Connection
}

// handleConnection runs a session to completion. It is spawned once per
// accepted connection and always tears the connection down on exit.
func (h *Hub) handleConnection(conn net.Conn) {
	s := &session{hub: h, conn: conn}
	defer s.close()

	log.Infof("Connection from %s", conn.RemoteAddr())

	err := s.handshake()
	if err != nil {
		log.Infof("Handshake with %s failed: %s", conn.RemoteAddr(), err)
		return
	}

	err = s.run()
	if err != nil {
		log.Errorf("Session with %s ended: %s", s.connection, err)
	}
}

// handshake reads exactly one frame, which must be a connect or register
// request. On handler failure the error response goes to the handshake
// writer alone; on success the response is emitted to the authorized set for
// (no target, outbound response) as well as to the new connection.
func (s *session) handshake() error {
	payload, err := wire.DecodePayload(s.conn)
	if err != nil {
		return err
	}

	request, ok := payload.(*wire.Request)
	if !ok || !rpc.IsHandshakeMethod(request.Method) {
		return errors.New("first payload is not a connect or register request")
	}

	// The handler binds the handshake writer to the application it
	// authenticates.
	pending := connregistry.New("", s.conn, nil)
	response := rpc.Dispatch(s.hub.rpcContext, pending, request)
	if response.Error != nil {
		s.deliverToSender(response)
		return errors.Errorf("%s rejected: %s", request.Method, response.Error.Message)
	}

	connection, ok := s.hub.registry.FindByWriter(s.conn)
	if !ok {
		return errors.New("handshake succeeded but the writer is not registered")
	}
	s.connection = connection

	s.deliverToSender(response)
	s.emitToAuthorized(response, nil, dbmodels.ActionOutboundResponse)
	return nil
}

// run reads frames until the stream ends, classifying each decoded payload
// and fanning it out through the permission model.
func (s *session) run() error {
	for {
		payload, err := wire.DecodePayload(s.conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Infof("Session %s disconnected", s.connection)
				return nil
			}

			var invalidPayloadErr *wire.InvalidPayloadError
			if errors.As(err, &invalidPayloadErr) {
				// Recoverable: answer on this session's own
				// writer and keep reading.
				log.Warnf("Failed to decode payload from %s: %s", s.connection, err)
				s.deliverToSender(wire.NewErrorResponse(nil, &wire.RPCError{
					Code:    invalidPayloadErr.Code,
					Message: invalidPayloadErr.Err.Error(),
				}))
				continue
			}

			var invalidBatchErr *wire.InvalidBatchError
			if errors.As(err, &invalidBatchErr) {
				s.rejectInvalidBatch(invalidBatchErr.Raw)
				continue
			}

			return err
		}

		log.Tracef("Incoming payload from %s: %s", s.connection, logger.NewLogClosure(func() string {
			return spew.Sdump(payload)
		}))

		s.handlePayload(payload)
	}
}

// handlePayload classifies a decoded payload after batch normalization and
// emits it to the authorized set its shape selects.
func (s *session) handlePayload(payload wire.Payload) {
	appID := s.connection.ID()

	// A non-array payload is a single-element batch for classification;
	// a forwarded batch of length 1 flattens back to a scalar on the wire.
	batch, ok := payload.(wire.Batch)
	if !ok {
		batch = wire.Batch{payload}
	} else if len(batch) == 1 {
		payload = batch[0]
	}

	switch batch[0].(type) {
	case *wire.Response:
		s.emitToAuthorized(payload, &appID, dbmodels.ActionOutboundResponse)

	case *wire.Notification:
		s.emitToAuthorized(payload, &appID, dbmodels.ActionOutboundNotification)

	case *wire.Request:
		s.emitToAuthorized(payload, &appID, dbmodels.ActionOutboundRequest)

		requests := make([]*wire.Request, 0, len(batch))
		for _, element := range batch {
			requests = append(requests, element.(*wire.Request))
		}
		responses := rpc.DispatchBatch(s.hub.rpcContext, s.connection, requests)

		responsePayload := flattenResponses(responses)
		s.deliverToSender(responsePayload)
		s.emitToAuthorized(responsePayload, &appID, dbmodels.ActionInboundResponse)
	}
}

// rejectInvalidBatch answers a mixed or malformed batch with a synthetic
// internal-error response on the sender's inbound-response set. The session
// remains open.
func (s *session) rejectInvalidBatch(raw string) {
	log.Warnf("Invalid batch from %s", s.connection)

	response := wire.NewErrorResponse(nil, &wire.RPCError{
		Code:    wire.ErrInternal,
		Message: fmt.Sprintf("Invalid Request(s): %s", raw),
	})

	appID := s.connection.ID()
	s.deliverToSender(response)
	s.emitToAuthorized(response, &appID, dbmodels.ActionInboundResponse)
}

// emitToAuthorized fans a payload out to the authorized set for the given
// target and action. The sending application never implicitly observes its
// own payloads, so its connections are filtered out; a self-permission would
// be required for echo-back, and self-permissions are forbidden.
func (s *session) emitToAuthorized(payload wire.Payload, targetID *string, action dbmodels.Action) {
	connections := s.hub.authorizer.AuthorizedConnections(targetID, action)

	if s.connection != nil {
		filtered := make([]*connregistry.Connection, 0, len(connections))
		for _, connection := range connections {
			if connection.ID() == s.connection.ID() {
				continue
			}
			filtered = append(filtered, connection)
		}
		connections = filtered
	}

	Emit(payload, connections)
}

// deliverToSender writes a hub-produced payload to this session's own writer.
func (s *session) deliverToSender(payload wire.Payload) {
	encoded, err := wire.EncodePayload(payload)
	if err != nil {
		log.Errorf("Couldn't encode payload for %s: %s", s.conn.RemoteAddr(), err)
		return
	}

	writer := s.connection
	if writer == nil {
		writer = connregistry.New("", s.conn, nil)
	}
	err = writer.Write(encoded, emitWriteTimeout)
	if err != nil {
		log.Errorf("Failed to send payload to %s: %s", s.conn.RemoteAddr(), err)
	}
}

// flattenResponses flattens a length-1 response batch back to a scalar on
// the wire.
func flattenResponses(responses []*wire.Response) wire.Payload {
	if len(responses) == 1 {
		return responses[0]
	}
	batch := make(wire.Batch, 0, len(responses))
	for _, response := range responses {
		batch = append(batch, response)
	}
	return batch
}

// close tears the session down: the registry entry goes first, then the
// writer.
func (s *session) close() {
	removed := s.hub.registry.RemoveByWriter(s.conn)
	err := s.conn.Close()
	if err != nil && removed != nil {
		log.Debugf("Error closing connection %s: %s", removed, err)
	}
}
