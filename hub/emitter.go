package hub

import (
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/logger"
	"github.com/kyprware/synapse/wire"
)

// emitWriteTimeout bounds how long a single recipient may stall a write to
// itself. A slow consumer never stalls the other recipients.
const emitWriteTimeout = 10 * time.Second

// Emit encodes the payload once and writes it to every given connection,
// best-effort. A failed writer is logged and skipped; it is never removed
// here, since the session loop that owns it is responsible for its own
// teardown. Emission is order-preserving per connection but not synchronized
// across connections.
func Emit(payload wire.Payload, connections []*connregistry.Connection) {
	if len(connections) == 0 {
		return
	}

	encoded, err := wire.EncodePayload(payload)
	if err != nil {
		log.Errorf("Couldn't encode payload for emission: %s", err)
		return
	}

	// Every recipient is written concurrently; waiting for all of them keeps
	// consecutive emissions ordered per connection.
	var wg sync.WaitGroup
	for _, connection := range connections {
		connection := connection
		wg.Add(1)
		spawn(func() {
			defer wg.Done()
			err := connection.Write(encoded, emitWriteTimeout)
			if err != nil {
				log.Errorf("Failed to send payload to %s: %s", connection, err)
				return
			}
			log.Debugf("Sent payload to %s", connection)
			log.Tracef("Sent payload to %s: %s", connection, logger.NewLogClosure(func() string {
				return spew.Sdump(payload)
			}))
		})
	}
	wg.Wait()
}
