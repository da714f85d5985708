package workflows

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PrayerRoom/models"
	"github.com/PrayerRoom/stores"
)

var errStoreDown = errors.New("connection refused")

type updateCall struct {
	PrayerID int
	Fields   models.PrayerUpdate
}

// fakeRecordStore is an in-memory prayers table that records every call.
type fakeRecordStore struct {
	mu      sync.Mutex
	rows    []models.Prayer
	nextID  int
	now     time.Time
	selects []stores.PrayerQuery
	inserts []models.PrayerCreate
	updates []updateCall

	selectErr error
	insertErr error
	updateErr error
}

func newFakeRecordStore(rows ...models.Prayer) *fakeRecordStore {
	f := &fakeRecordStore{nextID: 1, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	for _, r := range rows {
		if r.Prayer_ID >= f.nextID {
			f.nextID = r.Prayer_ID + 1
		}
		f.rows = append(f.rows, r)
	}
	return f
}

func (f *fakeRecordStore) Select(_ context.Context, q stores.PrayerQuery) ([]models.Prayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, q)
	if f.selectErr != nil {
		return nil, f.selectErr
	}

	var out []models.Prayer
	for _, r := range f.rows {
		if q.Name != nil && r.Name != *q.Name {
			continue
		}
		if q.Phone != nil && r.Phone != *q.Phone {
			continue
		}
		if q.IsPublic != nil && r.Is_Public != *q.IsPublic {
			continue
		}
		out = append(out, r)
	}
	if q.NewestFirst {
		for i := 1; i < len(out); i++ {
			for j := i; j > 0 && out[j].Created_At.After(out[j-1].Created_At); j-- {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
	}
	return out, nil
}

func (f *fakeRecordStore) Insert(_ context.Context, p models.PrayerCreate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, p)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, models.Prayer{
		Prayer_ID:  f.nextID,
		Created_At: f.now,
		Name:       p.Name,
		Phone:      p.Phone,
		Content:    p.Content,
		Is_Public:  p.Is_Public,
	})
	f.nextID++
	return nil
}

func (f *fakeRecordStore) Update(_ context.Context, id int, fields models.PrayerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{PrayerID: id, Fields: fields})
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.rows {
		if f.rows[i].Prayer_ID != id {
			continue
		}
		if fields.Content != nil {
			f.rows[i].Content = *fields.Content
		}
		if fields.Is_Public != nil {
			f.rows[i].Is_Public = *fields.Is_Public
		}
		if fields.Created_At != nil {
			f.rows[i].Created_At = *fields.Created_At
		}
		if fields.Prayed_Count != nil {
			f.rows[i].Prayed_Count = *fields.Prayed_Count
		}
		return nil
	}
	return stores.ErrNotFound
}

func (f *fakeRecordStore) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts) + len(f.updates)
}

func (f *fakeRecordStore) find(id int) (models.Prayer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Prayer_ID == id {
			return r, true
		}
	}
	return models.Prayer{}, false
}

type recordingListener struct {
	events []SubmissionEvent
	err    error
}

func (l *recordingListener) PrayerSubmitted(_ context.Context, event SubmissionEvent) error {
	l.events = append(l.events, event)
	return l.err
}

// blockingListener reports its context and holds until release is closed.
type blockingListener struct {
	release chan struct{}
	started chan context.Context
}

func (l *blockingListener) PrayerSubmitted(ctx context.Context, _ SubmissionEvent) error {
	l.started <- ctx
	<-l.release
	return nil
}

// memoryTallyStore stands in for one device's local storage.
type memoryTallyStore struct {
	mu    sync.RWMutex
	marks map[string]struct{}
}

func newMemoryTallyStore() *memoryTallyStore {
	return &memoryTallyStore{marks: make(map[string]struct{})}
}

func (m *memoryTallyStore) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.marks[key]
	return ok, nil
}

func (m *memoryTallyStore) Set(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[key] = struct{}{}
	return nil
}

func (m *memoryTallyStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.marks, key)
	return nil
}

// failingTallyStore fails every call.
type failingTallyStore struct{}

func (failingTallyStore) Has(context.Context, string) (bool, error) {
	return false, errors.New("tally unavailable")
}
func (failingTallyStore) Set(context.Context, string) error    { return errors.New("tally unavailable") }
func (failingTallyStore) Remove(context.Context, string) error { return errors.New("tally unavailable") }

func boolPtr(b bool) *bool { return &b }

func form(name, phone, content string, isPublic bool) models.PrayerForm {
	return models.PrayerForm{Name: name, Phone: phone, Content: content, IsPublic: boolPtr(isPublic)}
}

func publicPrayer(id int, name string, createdAt time.Time, count int) models.Prayer {
	return models.Prayer{
		Prayer_ID:    id,
		Created_At:   createdAt,
		Name:         name,
		Phone:        "010-0000-0000",
		Content:      name + "의 기도",
		Is_Public:    true,
		Prayed_Count: count,
	}
}
