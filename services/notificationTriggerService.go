package services

import (
	"context"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/PrayerRoom/workflows"
)

const pushPreviewRunes = 60

type PastoralNotice struct {
	Outcome     workflows.Outcome
	Prayer_ID   int
	Name        string
	Content     string
	Received_At time.Time
}

func (n PastoralNotice) Title() string {
	if n.Outcome == workflows.OutcomeReplaced {
		return "교역자 기도 제목 변경"
	}
	return "새 교역자 기도 제목"
}

type pastoralEmailer interface {
	SendPastoralPrayerEmail(notice PastoralNotice) error
}

type pastoralPusher interface {
	SendToTopic(ctx context.Context, payload NotificationPayload) error
}

// PastoralNotifier forwards staff-only prayer requests to the pastoral team.
// Public requests are ignored; they are read in the prayer room instead.
type PastoralNotifier struct {
	email  pastoralEmailer
	push   pastoralPusher
	now    func() time.Time
	logger *zap.Logger
}

// NewPastoralNotifier wires whichever channels are configured. A nil channel is skipped.
func NewPastoralNotifier(email *EmailService, push *PushNotificationService, logger *zap.Logger) *PastoralNotifier {
	n := &PastoralNotifier{now: time.Now, logger: logger}
	if email != nil {
		n.email = email
	}
	if push != nil {
		n.push = push
	}
	return n
}

func (n *PastoralNotifier) PrayerSubmitted(ctx context.Context, event workflows.SubmissionEvent) error {
	if event.Is_Public {
		return nil
	}
	if n.email == nil && n.push == nil {
		n.logger.Debug("no pastoral channel configured", zap.String("outcome", string(event.Outcome)))
		return nil
	}

	notice := PastoralNotice{
		Outcome:     event.Outcome,
		Prayer_ID:   event.Prayer_ID,
		Name:        event.Name,
		Content:     event.Content,
		Received_At: n.now(),
	}

	var errs []error
	if n.email != nil {
		if err := n.email.SendPastoralPrayerEmail(notice); err != nil {
			errs = append(errs, err)
		}
	}
	if n.push != nil {
		payload := NotificationPayload{
			Title:    notice.Title(),
			Body:     notice.Name + ": " + preview(notice.Content, pushPreviewRunes),
			Data:     map[string]string{"outcome": string(notice.Outcome)},
			Priority: "high",
		}
		if notice.Prayer_ID != 0 {
			payload.Data["prayerId"] = strconv.Itoa(notice.Prayer_ID)
		}
		if err := n.push.SendToTopic(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func preview(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
