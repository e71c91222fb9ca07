package station

import (
	"evgate/internal"
	"evgate/ocpp"
	"fmt"
	"sync"
	"time"
)

type EntryStatus string

const (
	EntryStatusNew        EntryStatus = "New"
	EntryStatusProcessing EntryStatus = "Processing"
	EntryStatusFinished   EntryStatus = "Finished"
)

const maxSendAttempts = 5

var drainAcquireTimeout = 5 * time.Second

// EnqueuedRequest is one outbound request waiting for the maintenance
// drain. The optional callback receives the raw response payload once the
// central system acknowledges the request.
type EnqueuedRequest struct {
	Feature     string
	Request     ocpp.Request
	EnqueueTime time.Time
	Status      EntryStatus
	Callback    func(payload string, err error)
	attempts    int
}

// OutboundQueue preserves the order of causally dependent requests towards
// the central system: entries leave the queue strictly in enqueue order,
// and only after their send and callback completed.
type OutboundQueue struct {
	mux     sync.Mutex
	entries []*EnqueuedRequest
	drain   chan struct{}
	logger  internal.LogHandler
}

func NewOutboundQueue(logger internal.LogHandler) *OutboundQueue {
	return &OutboundQueue{
		drain:  make(chan struct{}, 1),
		logger: logger,
	}
}

func (q *OutboundQueue) Enqueue(entry *EnqueuedRequest) {
	entry.EnqueueTime = time.Now()
	entry.Status = EntryStatusNew
	q.mux.Lock()
	q.entries = append(q.entries, entry)
	q.mux.Unlock()
}

func (q *OutboundQueue) Len() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return len(q.entries)
}

func (q *OutboundQueue) head() *EnqueuedRequest {
	q.mux.Lock()
	defer q.mux.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	entry := q.entries[0]
	entry.Status = EntryStatusProcessing
	return entry
}

func (q *OutboundQueue) remove(entry *EnqueuedRequest) {
	q.mux.Lock()
	defer q.mux.Unlock()
	for i, e := range q.entries {
		if e == entry {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Drain sends the queued entries in FIFO order through the given sender.
// At most one drain pass runs at a time; a pass that cannot take the slot
// within the bounded wait is skipped and logged, never queued up again.
// A failing entry stays at the head for the next pass until its attempt
// budget is spent, then it is dropped and logged.
func (q *OutboundQueue) Drain(send func(request ocpp.Request) (string, error)) {
	select {
	case q.drain <- struct{}{}:
	case <-time.After(drainAcquireTimeout):
		if q.logger != nil {
			q.logger.Warn("outbound queue: drain pass skipped, previous pass still running")
		}
		return
	}
	defer func() { <-q.drain }()

	for {
		entry := q.head()
		if entry == nil {
			return
		}
		payload, err := send(entry.Request)
		if err != nil {
			entry.attempts++
			if entry.attempts < maxSendAttempts {
				entry.Status = EntryStatusNew
				if q.logger != nil {
					q.logger.Warn(fmt.Sprintf("outbound queue: send %s failed (attempt %d): %s", entry.Feature, entry.attempts, err))
				}
				return
			}
			if q.logger != nil {
				q.logger.Error(fmt.Sprintf("outbound queue: dropping %s after %d attempts", entry.Feature, entry.attempts), err)
			}
		}
		if entry.Callback != nil {
			entry.Callback(payload, err)
		}
		entry.Status = EntryStatusFinished
		q.remove(entry)
	}
}
