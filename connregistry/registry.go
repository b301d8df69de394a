package connregistry

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrWriterAlreadyRegistered indicates an Add with a writer that is already
// bound to a live connection.
var ErrWriterAlreadyRegistered = errors.New("writer is already registered")

// connectionSet is keyed by writer so one application may hold several live
// connections while a writer belongs to exactly one.
type connectionSet map[Writer]*Connection

func (cs connectionSet) add(connection *Connection) {
	cs[connection.Writer()] = connection
}

func (cs connectionSet) remove(connection *Connection) {
	delete(cs, connection.Writer())
}

// Registry is the process-wide set of live connections. It is the single
// authority for whether a writer is still live.
type Registry struct {
	lock     sync.RWMutex
	byWriter connectionSet
	byID     map[string]connectionSet
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		byWriter: make(connectionSet),
		byID:     make(map[string]connectionSet),
	}
}

// Add registers a connection. Registering a writer twice is an error.
func (r *Registry) Add(connection *Connection) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byWriter[connection.Writer()]; ok {
		return errors.WithStack(ErrWriterAlreadyRegistered)
	}

	r.byWriter.add(connection)
	idSet, ok := r.byID[connection.ID()]
	if !ok {
		idSet = make(connectionSet)
		r.byID[connection.ID()] = idSet
	}
	idSet.add(connection)

	log.Infof("Registered application connection %s", connection)
	return nil
}

// RemoveByWriter unregisters the connection bound to writer. It returns the
// removed connection, or nil if the writer was not registered.
func (r *Registry) RemoveByWriter(writer Writer) *Connection {
	r.lock.Lock()
	defer r.lock.Unlock()

	connection, ok := r.byWriter[writer]
	if !ok {
		return nil
	}
	r.removeLocked(connection)
	return connection
}

// RemoveByID unregisters every connection bound to the given application ID
// and returns them.
func (r *Registry) RemoveByID(appID string) []*Connection {
	r.lock.Lock()
	defer r.lock.Unlock()

	idSet, ok := r.byID[appID]
	if !ok {
		return nil
	}
	connections := make([]*Connection, 0, len(idSet))
	for _, connection := range idSet {
		connections = append(connections, connection)
	}
	for _, connection := range connections {
		r.removeLocked(connection)
	}
	return connections
}

func (r *Registry) removeLocked(connection *Connection) {
	r.byWriter.remove(connection)
	idSet, ok := r.byID[connection.ID()]
	if ok {
		idSet.remove(connection)
		if len(idSet) == 0 {
			delete(r.byID, connection.ID())
		}
	}
	log.Infof("Unregistered application connection %s", connection)
}

// FindByWriter returns the connection bound to writer, if any.
func (r *Registry) FindByWriter(writer Writer) (*Connection, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	connection, ok := r.byWriter[writer]
	return connection, ok
}

// FindByID returns every live connection of the given application.
func (r *Registry) FindByID(appID string) []*Connection {
	r.lock.RLock()
	defer r.lock.RUnlock()

	idSet, ok := r.byID[appID]
	if !ok {
		return nil
	}
	connections := make([]*Connection, 0, len(idSet))
	for _, connection := range idSet {
		connections = append(connections, connection)
	}
	return connections
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.byWriter)
}

// Snapshot returns a consistent copy of the registry contents, optionally
// filtered, sorted, and paged.
func (r *Registry) Snapshot(filter func(*Connection) bool, less func(a, b *Connection) bool,
	skip, limit int) []*Connection {

	r.lock.RLock()
	connections := make([]*Connection, 0, len(r.byWriter))
	for _, connection := range r.byWriter {
		if filter == nil || filter(connection) {
			connections = append(connections, connection)
		}
	}
	r.lock.RUnlock()

	if less != nil {
		sort.Slice(connections, func(i, j int) bool {
			return less(connections[i], connections[j])
		})
	}
	if skip > 0 {
		if skip >= len(connections) {
			return nil
		}
		connections = connections[skip:]
	}
	if limit > 0 && limit < len(connections) {
		connections = connections[:limit]
	}
	return connections
}
