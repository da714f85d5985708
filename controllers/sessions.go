package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PrayerRoom/workflows"
)

type submissionEntry struct {
	workflow *workflows.Submission
	lastSeen time.Time
}

type roomEntry struct {
	workflow *workflows.Browsing
	deviceID string
	lastSeen time.Time
}

// SessionRegistry holds the live workflow instances behind the HTTP shell.
// Entries that sit idle longer than ttl are dropped by Prune.
type SessionRegistry struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	submissions map[string]*submissionEntry
	rooms       map[string]*roomEntry
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		ttl:         ttl,
		now:         time.Now,
		submissions: make(map[string]*submissionEntry),
		rooms:       make(map[string]*roomEntry),
	}
}

func (r *SessionRegistry) AddSubmission(w *workflows.Submission) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.submissions[id] = &submissionEntry{workflow: w, lastSeen: r.now()}
	return id
}

func (r *SessionRegistry) Submission(id string) (*workflows.Submission, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.submissions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.workflow, true
}

func (r *SessionRegistry) AddRoom(deviceID string, w *workflows.Browsing) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.rooms[id] = &roomEntry{workflow: w, deviceID: deviceID, lastSeen: r.now()}
	return id
}

// Room returns the browsing session only to the device that opened it.
func (r *SessionRegistry) Room(id, deviceID string) (*workflows.Browsing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.rooms[id]
	if !ok || entry.deviceID != deviceID {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.workflow, true
}

// Prune drops idle sessions and reports how many were removed.
func (r *SessionRegistry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, entry := range r.submissions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.submissions, id)
			removed++
		}
	}
	for id, entry := range r.rooms {
		if entry.lastSeen.Before(cutoff) {
			delete(r.rooms, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submissions) + len(r.rooms)
}

// StartPruning runs Prune every interval until ctx is done.
func (r *SessionRegistry) StartPruning(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Prune(); n > 0 {
					logger.Debug("pruned idle sessions", zap.Int("count", n))
				}
			}
		}
	}()
}
