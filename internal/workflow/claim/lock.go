// internal/workflow/claim/lock.go
package claim

import "sync"

// lockTable serializes claims per posted message. The message itself
// carries no durable "claimed" marker until it is deleted in the
// Closing step, so the window between channel creation and message
// deletion is guarded here, in process. Acquisition never blocks: a
// losing claim is rejected immediately, not queued.
type lockTable struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newLockTable() *lockTable {
	return &lockTable{held: make(map[string]struct{})}
}

// TryAcquire takes the lock for a message id if it is free.
func (t *lockTable) TryAcquire(messageID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, taken := t.held[messageID]; taken {
		return false
	}
	t.held[messageID] = struct{}{}
	return true
}

// Release frees the lock for a message id.
func (t *lockTable) Release(messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.held, messageID)
}
