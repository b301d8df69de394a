package connregistry

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/kyprware/synapse/jwtauth"
)

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

// fakeWriter is an in-memory Writer for registry and connection tests.
type fakeWriter struct {
	name string

	lock   sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func newFakeWriter(name string) *fakeWriter {
	return &fakeWriter{name: name}
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.closed {
		return 0, errors.New("writer is closed")
	}
	return w.buf.Write(p)
}

func (w *fakeWriter) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) SetWriteDeadline(time.Time) error { return nil }
func (w *fakeWriter) RemoteAddr() net.Addr             { return fakeAddr(w.name) }

// TestAddAndFind tests registration and both lookup indices.
func TestAddAndFind(t *testing.T) {
	registry := NewRegistry()
	writer := newFakeWriter("w1")
	claims := &jwtauth.SessionClaims{ApplicationID: "a1"}

	connection := New("a1", writer, claims)
	err := registry.Add(connection)
	if err != nil {
		t.Fatalf("Add: unexpected error %v", err)
	}

	found, ok := registry.FindByWriter(writer)
	if !ok || found != connection {
		t.Errorf("FindByWriter: got %v, want %v", found, connection)
	}

	byID := registry.FindByID("a1")
	if len(byID) != 1 || byID[0] != connection {
		t.Errorf("FindByID: got %v, want [%v]", byID, connection)
	}

	if registry.Count() != 1 {
		t.Errorf("Count: got %d, want 1", registry.Count())
	}
}

// TestWriterBijectivity tests that no writer may appear in two connections
// simultaneously.
func TestWriterBijectivity(t *testing.T) {
	registry := NewRegistry()
	writer := newFakeWriter("w1")

	err := registry.Add(New("a1", writer, nil))
	if err != nil {
		t.Fatalf("Add: unexpected error %v", err)
	}

	err = registry.Add(New("a2", writer, nil))
	if !errors.Is(err, ErrWriterAlreadyRegistered) {
		t.Errorf("Add with a reused writer: got %v, want ErrWriterAlreadyRegistered", err)
	}
}

// TestMultipleConnectionsPerApplication tests that one application may own
// several concurrent connections.
func TestMultipleConnectionsPerApplication(t *testing.T) {
	registry := NewRegistry()
	first := newFakeWriter("w1")
	second := newFakeWriter("w2")

	err := registry.Add(New("a1", first, nil))
	if err != nil {
		t.Fatalf("Add: unexpected error %v", err)
	}
	err = registry.Add(New("a1", second, nil))
	if err != nil {
		t.Fatalf("Add second connection: unexpected error %v", err)
	}

	if len(registry.FindByID("a1")) != 2 {
		t.Errorf("FindByID: got %d connections, want 2", len(registry.FindByID("a1")))
	}

	removed := registry.RemoveByWriter(first)
	if removed == nil || removed.Writer() != first {
		t.Fatalf("RemoveByWriter removed the wrong connection: %v", removed)
	}
	if len(registry.FindByID("a1")) != 1 {
		t.Errorf("after removal FindByID: got %d connections, want 1",
			len(registry.FindByID("a1")))
	}
}

// TestRemoveByID tests that removal by application id drops every connection
// of that application and nothing else.
func TestRemoveByID(t *testing.T) {
	registry := NewRegistry()
	registry.Add(New("a1", newFakeWriter("w1"), nil))
	registry.Add(New("a1", newFakeWriter("w2"), nil))
	registry.Add(New("a2", newFakeWriter("w3"), nil))

	removed := registry.RemoveByID("a1")
	if len(removed) != 2 {
		t.Errorf("RemoveByID: removed %d connections, want 2", len(removed))
	}
	if registry.Count() != 1 {
		t.Errorf("Count after removal: got %d, want 1", registry.Count())
	}
	if registry.RemoveByID("missing") != nil {
		t.Errorf("RemoveByID of an unknown application should return nil")
	}
}

// TestSnapshot tests filtering, sorting, and paging of the registry view.
func TestSnapshot(t *testing.T) {
	registry := NewRegistry()
	registry.Add(New("a1", newFakeWriter("w1"), nil))
	registry.Add(New("a2", newFakeWriter("w2"), nil))
	registry.Add(New("a3", newFakeWriter("w3"), nil))

	less := func(a, b *Connection) bool { return a.ID() < b.ID() }

	snapshot := registry.Snapshot(nil, less, 0, 0)
	if len(snapshot) != 3 || snapshot[0].ID() != "a1" || snapshot[2].ID() != "a3" {
		t.Errorf("Snapshot sort: got %v", snapshot)
	}

	snapshot = registry.Snapshot(func(c *Connection) bool { return c.ID() != "a2" }, less, 0, 0)
	if len(snapshot) != 2 {
		t.Errorf("Snapshot filter: got %d connections, want 2", len(snapshot))
	}

	snapshot = registry.Snapshot(nil, less, 1, 1)
	if len(snapshot) != 1 || snapshot[0].ID() != "a2" {
		t.Errorf("Snapshot paging: got %v", snapshot)
	}

	if registry.Snapshot(nil, less, 5, 0) != nil {
		t.Errorf("Snapshot with skip beyond the end should return nil")
	}
}
