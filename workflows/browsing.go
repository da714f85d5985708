package workflows

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/PrayerRoom/models"
	"github.com/PrayerRoom/stores"
)

type BrowsingState string

const (
	BrowsingLoading   BrowsingState = "LOADING"
	BrowsingEmpty     BrowsingState = "EMPTY"
	BrowsingViewing   BrowsingState = "VIEWING"
	BrowsingExhausted BrowsingState = "EXHAUSTED"
)

type BrowsingOption func(*Browsing)

func WithBrowsingLogger(logger *zap.Logger) BrowsingOption {
	return func(b *Browsing) { b.logger = logger }
}

// Browsing walks forward through the public prayers fetched when the session loads.
//
// The fetched slice is a snapshot and is never written to. Prayed counts shown
// to the viewer live in a separate projection so optimistic edits and their
// rollbacks never touch the snapshot.
type Browsing struct {
	mu     sync.Mutex
	store  stores.RecordStore
	tally  stores.TallyStore
	logger *zap.Logger

	state    BrowsingState
	snapshot []models.Prayer
	counts   []int
	index    int
	prayed   bool
	busy     bool
	lastErr  error
}

func NewBrowsing(store stores.RecordStore, tally stores.TallyStore, opts ...BrowsingOption) *Browsing {
	b := &Browsing{
		store:  store,
		tally:  tally,
		logger: zap.NewNop(),
		state:  BrowsingLoading,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type BrowsingView struct {
	State  BrowsingState      `json:"state"`
	Index  int                `json:"index"`
	Total  int                `json:"total"`
	Card   *models.PrayerCard `json:"card,omitempty"`
	Prayed bool               `json:"prayed"`
	Busy   bool               `json:"busy"`
	Error  string             `json:"error,omitempty"`
}

func (b *Browsing) View() BrowsingView {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := BrowsingView{
		State: b.state,
		Index: b.index,
		Total: len(b.snapshot),
		Busy:  b.busy,
	}
	if b.state == BrowsingViewing {
		card := b.snapshot[b.index].Card()
		card.Prayed_Count = b.counts[b.index]
		v.Card = &card
		v.Prayed = b.prayed
	}
	if b.lastErr != nil {
		v.Error = b.lastErr.Error()
	}
	return v
}

func (b *Browsing) State() BrowsingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Load fetches every public prayer, newest first. It may be repeated only
// while the session is still loading, i.e. after a failed fetch.
func (b *Browsing) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BrowsingLoading {
		return ErrInvalidTransition
	}
	b.lastErr = nil

	isPublic := true
	prayers, err := b.store.Select(ctx, stores.PrayerQuery{IsPublic: &isPublic, NewestFirst: true})
	if err != nil {
		storeErr := &StoreError{Op: "select", Err: err}
		b.logger.Error("failed to load public prayers", zap.Error(err))
		b.lastErr = storeErr
		return storeErr
	}

	b.snapshot = append([]models.Prayer(nil), prayers...)
	b.counts = make([]int, len(b.snapshot))
	for i, p := range b.snapshot {
		b.counts[i] = p.Prayed_Count
	}

	if len(b.snapshot) == 0 {
		b.state = BrowsingEmpty
		return nil
	}

	b.moveTo(ctx, 0)
	return nil
}

// Next advances the cursor. Moving past the last card ends in EXHAUSTED.
func (b *Browsing) Next(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BrowsingViewing {
		return ErrInvalidTransition
	}
	b.lastErr = nil

	if b.index+1 >= len(b.snapshot) {
		b.index = len(b.snapshot)
		b.state = BrowsingExhausted
		b.prayed = false
		return nil
	}

	b.moveTo(ctx, b.index+1)
	return nil
}

// Restart goes back to the first card of the same snapshot without fetching again.
func (b *Browsing) Restart(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BrowsingExhausted && b.state != BrowsingViewing {
		return ErrInvalidTransition
	}
	b.lastErr = nil

	b.moveTo(ctx, 0)
	return nil
}

func (b *Browsing) moveTo(ctx context.Context, index int) {
	b.index = index
	b.state = BrowsingViewing

	key := stores.TallyKey(b.snapshot[index].Prayer_ID)
	prayed, err := b.tally.Has(ctx, key)
	if err != nil {
		b.logger.Warn("failed to read tally mark", zap.String("key", key), zap.Error(err))
		prayed = false
	}
	b.prayed = prayed
}

// TogglePrayed flips the viewer's "prayed" mark on the current card and
// pushes the new count to the record store. The count and mark are applied
// before the store call; a failed call reverts the count and mark display but
// leaves the device's tally store as written.
func (b *Browsing) TogglePrayed(ctx context.Context) error {
	b.mu.Lock()
	if b.state != BrowsingViewing {
		b.mu.Unlock()
		return ErrInvalidTransition
	}
	if b.busy {
		b.mu.Unlock()
		return ErrToggleInFlight
	}

	idx := b.index
	prayerID := b.snapshot[idx].Prayer_ID
	wasPrayed := b.prayed
	oldCount := b.counts[idx]

	nowPrayed := !wasPrayed
	newCount := oldCount + 1
	if !nowPrayed {
		newCount = max(0, oldCount-1)
	}

	b.prayed = nowPrayed
	b.counts[idx] = newCount
	b.busy = true
	b.lastErr = nil
	b.mu.Unlock()

	key := stores.TallyKey(prayerID)
	var tallyErr error
	if nowPrayed {
		tallyErr = b.tally.Set(ctx, key)
	} else {
		tallyErr = b.tally.Remove(ctx, key)
	}
	if tallyErr != nil {
		b.logger.Warn("failed to write tally mark", zap.String("key", key), zap.Error(tallyErr))
	}

	err := b.store.Update(ctx, prayerID, models.PrayerUpdate{Prayed_Count: &newCount})

	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false

	if err != nil {
		b.counts[idx] = oldCount
		if b.state == BrowsingViewing && b.index == idx {
			b.prayed = wasPrayed
		}
		storeErr := &StoreError{Op: "update", Err: err}
		b.logger.Error("failed to update prayed count",
			zap.Int("prayer_id", prayerID), zap.Int("count", newCount), zap.Error(err))
		b.lastErr = storeErr
		return storeErr
	}
	return nil
}
