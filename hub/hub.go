package hub

import (
	"crypto/tls"
	"net"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/kyprware/synapse/config"
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/rpc"
)

// Hub accepts TLS connections and runs one session per connection. It owns
// the listener lifecycle; the sessions own their connections.
type Hub struct {
	cfg        *config.Config
	registry   *connregistry.Registry
	authorizer *Authorizer
	rpcContext *rpc.Context

	listener net.Listener
	started  int32
	shutdown int32
	quit     chan struct{}
}

// New returns an unstarted hub over the given collaborators.
func New(cfg *config.Config, rpcContext *rpc.Context, registry *connregistry.Registry) *Hub {
	return &Hub{
		cfg:        cfg,
		registry:   registry,
		authorizer: NewAuthorizer(rpcContext.Repository, registry),
		rpcContext: rpcContext,
		quit:       make(chan struct{}),
	}
}

// Start terminates TLS with the configured certificate pair, binds the
// listen address, and starts accepting sessions.
func (h *Hub) Start() error {
	if atomic.AddInt32(&h.started, 1) != 1 {
		return nil
	}

	certificate, err := tls.LoadX509KeyPair(h.cfg.TLSCert, h.cfg.TLSKey)
	if err != nil {
		return errors.Wrap(err, "couldn't load the TLS certificate pair")
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS12,
	}

	listenAddress := h.cfg.HubListenAddress()
	listener, err := tls.Listen("tcp", listenAddress, tlsConfig)
	if err != nil {
		return errors.Wrapf(err, "couldn't bind %s", listenAddress)
	}
	h.listener = listener

	log.Infof("Synapse hub listening on %s", listenAddress)
	spawn(func() {
		h.acceptLoop()
	})
	return nil
}

// Stop cancels the accept loop and closes every live connection. Each
// session releases its own registry entry as its read loop fails.
func (h *Hub) Stop() {
	if atomic.AddInt32(&h.shutdown, 1) != 1 {
		return
	}

	log.Infof("Hub shutting down")
	close(h.quit)
	if h.listener != nil {
		h.listener.Close()
	}

	for _, connection := range h.registry.Snapshot(nil, nil, 0, 0) {
		err := connection.Close()
		if err != nil {
			log.Debugf("Error closing connection %s: %s", connection, err)
		}
	}
}

func (h *Hub) acceptLoop() {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			select {
			case <-h.quit:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Errorf("Couldn't accept connection: %s", err)
			continue
		}

		spawn(func() {
			h.handleConnection(conn)
		})
	}
}
