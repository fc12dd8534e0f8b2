// Package queue implements support for handing relay messages from the
// connection readers to the relay writer.
package queue

import (
	"github.com/google/uuid"

	"github.com/rwool/linerelay/pkg/handoff"
)

// Message is a single line read from a connection, to be echoed back to it.
type Message struct {
	// ConnID identifies the connection the message came from and is sent
	// back to.
	ConnID uuid.UUID
	// Payload is the line as read, including its trailing delimiter.
	Payload []byte
}

// Queue wraps the set of methods for passing messages between readers and
// the writer.
//
// Push blocks while the queue is full and Pop blocks while it is empty. A
// major limitation of this interface is that it does not provide delivery
// guarantees across shutdown: once Close is called, Push drops messages and,
// unless the queue drains on close, messages still buffered are discarded.
type Queue interface {
	Push(m Message) bool
	Pop() (Message, bool)
	Close()
}

// Ensure the handoff queue implements Queue.
var _ Queue = (*handoff.Queue[Message])(nil)

// New creates the in-process queue shared by readers and the writer.
func New(capacity int, drainOnClose bool) *handoff.Queue[Message] {
	var opts []handoff.Option
	if drainOnClose {
		opts = append(opts, handoff.WithDrain())
	}
	return handoff.New[Message](capacity, opts...)
}
