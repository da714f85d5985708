package workflows

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/PrayerRoom/models"
	"github.com/PrayerRoom/stores"
)

type SubmissionState string

const (
	SubmissionEditing   SubmissionState = "EDITING"
	SubmissionChecking  SubmissionState = "CHECKING"
	SubmissionInserting SubmissionState = "INSERTING"
	SubmissionConflict  SubmissionState = "CONFLICT"
	SubmissionDone      SubmissionState = "DONE"
)

type ConflictChoice string

const (
	KeepOld    ConflictChoice = "KEEP_OLD"
	ReplaceNew ConflictChoice = "REPLACE_NEW"
	Abandon    ConflictChoice = "ABANDON"
)

type Outcome string

const (
	OutcomeInserted Outcome = "INSERTED"
	OutcomeKept     Outcome = "KEPT"
	OutcomeReplaced Outcome = "REPLACED"
)

const (
	MessageInserted = "기도 제목이 성공적으로 전달되었습니다."
	MessageKept     = "기존 기도 제목을 유지합니다."
	MessageReplaced = "새로운 기도 제목으로 변경되었습니다."
)

// SubmissionEvent describes a submission that changed the record store.
type SubmissionEvent struct {
	Outcome   Outcome
	Prayer_ID int // zero for inserts; the store does not echo the new id
	Name      string
	Content   string
	Is_Public bool
}

const listenerTimeout = time.Minute

// SubmissionListener is told about every insert or replacement that a workflow commits.
// It is called on its own goroutine after the workflow has settled.
type SubmissionListener interface {
	PrayerSubmitted(ctx context.Context, event SubmissionEvent) error
}

type SubmissionOption func(*Submission)

func WithSubmissionClock(now func() time.Time) SubmissionOption {
	return func(s *Submission) { s.now = now }
}

func WithSubmissionLogger(logger *zap.Logger) SubmissionOption {
	return func(s *Submission) { s.logger = logger }
}

func WithSubmissionListener(listener SubmissionListener) SubmissionOption {
	return func(s *Submission) { s.listener = listener }
}

// Submission drives one prayer request from the form through duplicate
// detection to either an insert or a resolved conflict.
type Submission struct {
	mu            sync.Mutex
	notifications sync.WaitGroup
	store         stores.RecordStore
	listener      SubmissionListener
	now           func() time.Time
	logger        *zap.Logger

	state    SubmissionState
	form     models.PrayerCreate
	existing *models.Prayer
	outcome  Outcome
	message  string
	lastErr  error
}

func NewSubmission(store stores.RecordStore, opts ...SubmissionOption) *Submission {
	s := &Submission{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
		state:  SubmissionEditing,
		form:   models.PrayerCreate{Is_Public: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ConflictView struct {
	Existing  ExistingPrayerView  `json:"existing"`
	Candidate models.PrayerCreate `json:"candidate"`
}

type ExistingPrayerView struct {
	Prayer_ID  int       `json:"id"`
	Content    string    `json:"content"`
	Is_Public  bool      `json:"isPublic"`
	Created_At time.Time `json:"createdAt"`
}

type SubmissionView struct {
	State    SubmissionState     `json:"state"`
	Form     models.PrayerCreate `json:"form"`
	Conflict *ConflictView       `json:"conflict,omitempty"`
	Outcome  Outcome             `json:"outcome,omitempty"`
	Message  string              `json:"message,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func (s *Submission) View() SubmissionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Submission) viewLocked() SubmissionView {
	v := SubmissionView{
		State:   s.state,
		Form:    s.form,
		Outcome: s.outcome,
		Message: s.message,
	}
	if s.state == SubmissionConflict && s.existing != nil {
		v.Conflict = &ConflictView{
			Existing: ExistingPrayerView{
				Prayer_ID:  s.existing.Prayer_ID,
				Content:    s.existing.Content,
				Is_Public:  s.existing.Is_Public,
				Created_At: s.existing.Created_At,
			},
			Candidate: s.form,
		}
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

func (s *Submission) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Edit replaces the form fields. The phone is formatted the same way it is while typing.
func (s *Submission) Edit(form models.PrayerForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SubmissionEditing {
		return ErrInvalidTransition
	}

	s.form.Name = form.Name
	s.form.Phone = FormatPhone(form.Phone)
	s.form.Content = form.Content
	if form.IsPublic != nil {
		s.form.Is_Public = *form.IsPublic
	}
	s.lastErr = nil
	return nil
}

func (s *Submission) validate() error {
	switch {
	case strings.TrimSpace(s.form.Name) == "":
		return &ValidationError{Field: "name"}
	case strings.TrimSpace(s.form.Phone) == "":
		return &ValidationError{Field: "phone"}
	case strings.TrimSpace(s.form.Content) == "":
		return &ValidationError{Field: "content"}
	}
	return nil
}

// Submit validates the form, looks for a prior request with the same name,
// phone and visibility, and inserts when there is none.
func (s *Submission) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SubmissionEditing {
		return ErrInvalidTransition
	}
	s.lastErr = nil

	if err := s.validate(); err != nil {
		s.lastErr = err
		return err
	}

	name := strings.TrimSpace(s.form.Name)
	phone := strings.TrimSpace(s.form.Phone)
	isPublic := s.form.Is_Public

	s.state = SubmissionChecking
	matches, err := s.store.Select(ctx, stores.PrayerQuery{
		Name:     &name,
		Phone:    &phone,
		IsPublic: &isPublic,
	})
	if err != nil {
		return s.backToEditing("select", err)
	}

	if len(matches) > 0 {
		existing := matches[0]
		s.existing = &existing
		s.state = SubmissionConflict
		s.logger.Info("duplicate prayer request found",
			zap.Int("prayer_id", existing.Prayer_ID),
			zap.Bool("is_public", isPublic),
			zap.Int("matches", len(matches)))
		return nil
	}

	s.state = SubmissionInserting
	err = s.store.Insert(ctx, models.PrayerCreate{
		Name:      name,
		Phone:     phone,
		Content:   s.form.Content,
		Is_Public: isPublic,
	})
	if err != nil {
		return s.backToEditing("insert", err)
	}

	s.finish(ctx, OutcomeInserted, MessageInserted, 0)
	return nil
}

func (s *Submission) backToEditing(op string, err error) error {
	storeErr := &StoreError{Op: op, Err: err}
	s.logger.Error("prayer submission failed", zap.String("op", op), zap.Error(err))
	s.state = SubmissionEditing
	s.lastErr = storeErr
	return storeErr
}

// ResolveConflict applies the submitter's choice between the existing request and the new one.
func (s *Submission) ResolveConflict(ctx context.Context, choice ConflictChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SubmissionConflict || s.existing == nil {
		return ErrInvalidTransition
	}
	s.lastErr = nil

	switch choice {
	case KeepOld:
		s.finish(ctx, OutcomeKept, MessageKept, s.existing.Prayer_ID)
		return nil

	case ReplaceNew:
		content := s.form.Content
		isPublic := s.form.Is_Public
		createdAt := s.now()
		zero := 0
		err := s.store.Update(ctx, s.existing.Prayer_ID, models.PrayerUpdate{
			Content:      &content,
			Is_Public:    &isPublic,
			Created_At:   &createdAt,
			Prayed_Count: &zero,
		})
		if err != nil {
			storeErr := &StoreError{Op: "update", Err: err}
			s.logger.Error("prayer replacement failed",
				zap.Int("prayer_id", s.existing.Prayer_ID), zap.Error(err))
			s.lastErr = storeErr
			return storeErr
		}
		s.finish(ctx, OutcomeReplaced, MessageReplaced, s.existing.Prayer_ID)
		return nil

	case Abandon:
		s.existing = nil
		s.state = SubmissionEditing
		return nil
	}

	return &ValidationError{Field: "choice"}
}

func (s *Submission) finish(ctx context.Context, outcome Outcome, message string, prayerID int) {
	s.state = SubmissionDone
	s.outcome = outcome
	s.message = message

	if outcome == OutcomeKept || s.listener == nil {
		return
	}

	event := SubmissionEvent{
		Outcome:   outcome,
		Prayer_ID: prayerID,
		Name:      strings.TrimSpace(s.form.Name),
		Content:   s.form.Content,
		Is_Public: s.form.Is_Public,
	}
	s.notifications.Add(1)
	go s.notify(context.WithoutCancel(ctx), event)
}

// Wait blocks until every listener call started by this workflow has returned.
func (s *Submission) Wait() {
	s.notifications.Wait()
}

// notify runs outside the workflow lock and outlives the request that triggered it.
func (s *Submission) notify(ctx context.Context, event SubmissionEvent) {
	defer s.notifications.Done()

	ctx, cancel := context.WithTimeout(ctx, listenerTimeout)
	defer cancel()

	if err := s.listener.PrayerSubmitted(ctx, event); err != nil {
		s.logger.Warn("submission listener failed", zap.String("outcome", string(event.Outcome)), zap.Error(err))
	}
}
