package connregistry

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/kyprware/synapse/jwtauth"
)

// Writer is the transport half a connection writes to. A *tls.Conn satisfies
// it.
type Writer interface {
	io.WriteCloser
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
}

// Connection binds a live writer to the application that authenticated it.
// Its fields are immutable once registered; identity is the (application,
// writer) pair, so one application may own several concurrent connections.
type Connection struct {
	appID  string
	writer Writer
	claims *jwtauth.SessionClaims

	writeLock sync.Mutex
}

// New returns a connection binding writer to the given application.
func New(appID string, writer Writer, claims *jwtauth.SessionClaims) *Connection {
	return &Connection{
		appID:  appID,
		writer: writer,
		claims: claims,
	}
}

// ID returns the application ID bound to this connection.
func (c *Connection) ID() string {
	return c.appID
}

// Writer returns the writer bound to this connection.
func (c *Connection) Writer() Writer {
	return c.writer
}

// Claims returns the session claims the connection authenticated with.
func (c *Connection) Claims() *jwtauth.SessionClaims {
	return c.claims
}

func (c *Connection) String() string {
	return fmt.Sprintf("<%s: %s>", c.appID, c.writer.RemoteAddr())
}

// Write writes encoded bytes to the writer under the connection's write lock,
// bounded by the given timeout. Writes to the same connection are ordered;
// writes to distinct connections never block each other.
func (c *Connection) Write(encoded []byte, timeout time.Duration) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	if timeout > 0 {
		err := c.writer.SetWriteDeadline(time.Now().Add(timeout))
		if err != nil {
			return err
		}
	}
	_, err := c.writer.Write(encoded)
	return err
}

// Close closes the underlying writer.
func (c *Connection) Close() error {
	return c.writer.Close()
}
