package events

import (
	"sync"
	"time"
)

// Event names published by the engine.
const (
	SubstituteAssigned = "substitute:assigned"
	SessionStarted     = "session:started"
	SessionEnded       = "session:ended"
	TeacherCheckin     = "teacher:checkin"
	TeacherCheckout    = "teacher:checkout"
)

// Event is a typed notification streamed to clients. Delivery is best-effort
// and at-most-once; clients reconcile gaps by refetching the snapshot.
type Event struct {
	Name      string      `json:"name"`
	Timestamp time.Time   `json:"timestamp"`
	Origin    string      `json:"origin,omitempty"`
	Payload   interface{} `json:"payload"`
}

// AssignmentPayload accompanies substitute:assigned.
type AssignmentPayload struct {
	SessionID   string `json:"session_id"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

// SessionPayload accompanies session:started and session:ended.
type SessionPayload struct {
	SessionID string `json:"session_id"`
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id"`
	Status    string `json:"status"`
}

// TeacherPayload accompanies teacher:checkin and teacher:checkout.
type TeacherPayload struct {
	TeacherID string    `json:"teacher_id"`
	Date      time.Time `json:"date"`
}

// Publisher is the write side of the notifier, injected into services so
// they stay testable without a live transport.
type Publisher interface {
	Publish(evt Event)
}

// Hub fans out events to subscribers over per-subscriber buffered channels.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	bufferSize  int
}

// NewHub builds a hub. bufferSize <= 0 falls back to a sane default.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Hub{
		subscribers: make(map[uint64]chan Event),
		bufferSize:  bufferSize,
	}
}

// Publish delivers the event to all subscribers. A slow subscriber drops the
// event rather than blocking the publishing write path.
func (h *Hub) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a listener and returns its channel plus a cleanup
// function. The channel is closed by the cleanup function.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufferSize)
	h.subscribers[id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		if sub, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(sub)
		}
		h.mu.Unlock()
	}

	return ch, unsubscribe
}

// SubscriberCount reports the current number of listeners.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
