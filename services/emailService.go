package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// emailSender is the part of the Resend client this service calls.
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	emails emailSender
	from   string
	to     string
	logger *zap.Logger
}

var emailService *EmailService

// InitEmailService sets up pastoral email notices. It stays disabled unless
// the API key, sender and pastoral address are all configured.
func InitEmailService(apiKey, from, to string, logger *zap.Logger) {
	if apiKey == "" || from == "" || to == "" {
		logger.Warn("RESEND_API_KEY, RESEND_FROM_EMAIL or PASTORAL_EMAIL not set; pastoral email disabled")
		emailService = nil
		return
	}

	emailService = NewEmailService(resend.NewClient(apiKey).Emails, from, to, logger)
	logger.Info("email service initialized with Resend", zap.String("to", to))
}

func NewEmailService(emails emailSender, from, to string, logger *zap.Logger) *EmailService {
	return &EmailService{emails: emails, from: from, to: to, logger: logger}
}

// GetEmailService returns the configured email service, or nil when email is disabled.
func GetEmailService() *EmailService {
	return emailService
}

// SendPastoralPrayerEmail forwards a staff-only prayer request to the pastoral inbox.
func (s *EmailService) SendPastoralPrayerEmail(notice PastoralNotice) error {
	if s == nil || s.emails == nil {
		return fmt.Errorf("email service not initialized")
	}

	name := html.EscapeString(notice.Name)
	content := strings.ReplaceAll(html.EscapeString(notice.Content), "\n", "<br>")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Apple SD Gothic Neo', sans-serif;
            line-height: 1.7;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #e11d48;
        }
        .prayer {
            background-color: #fff1f2;
            border-left: 4px solid #e11d48;
            border-radius: 8px;
            padding: 20px;
            margin: 20px 0;
            font-size: 18px;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <p><strong>%s</strong> 님이 교역자에게만 기도 제목을 전했습니다.</p>
    <div class="prayer">%s</div>
    <p>접수 시각: %s</p>
    <div class="footer">
        <p>이 메일은 공유 기도실에서 자동으로 발송되었습니다.</p>
    </div>
</body>
</html>
`, notice.Title(), name, content, notice.Received_At.Format(time.DateTime))

	textBody := fmt.Sprintf(`%s

%s 님이 교역자에게만 기도 제목을 전했습니다.

%s

접수 시각: %s
`, notice.Title(), notice.Name, notice.Content, notice.Received_At.Format(time.DateTime))

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: notice.Title() + " - " + notice.Name,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.emails.Send(params)
	if err != nil {
		s.logger.Error("failed to send pastoral email", zap.String("to", s.to), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("sent pastoral email", zap.String("to", s.to), zap.String("email_id", sent.Id))
	return nil
}
