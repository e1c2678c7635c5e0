package notify

import (
	"fmt"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/cafedesk/cafedesk/config"
)

// Sender delivers shift and stock reports over whatever channels are
// configured. A channel with blank settings is silently skipped; delivery is
// always best effort and never blocks the caller's workflow.
type Sender struct {
	mail    config.MailConfig
	webhook config.WebhookConfig
}

func NewSender(cfg *config.AppConfig) *Sender {
	return &Sender{mail: cfg.Mail, webhook: cfg.Webhook}
}

// SendShiftReport mails the rendered shift report and posts it to the
// webhook. The first error encountered is returned for logging; partial
// delivery is not rolled back.
func (s *Sender) SendShiftReport(workerName, date, report string) error {
	subject := fmt.Sprintf("Shift report — %s — %s", workerName, date)
	mailErr := s.sendMail(subject, report)
	hookErr := s.postWebhook(map[string]interface{}{
		"event":  "shift_report",
		"worker": workerName,
		"date":   date,
		"report": report,
	})
	if mailErr != nil {
		return mailErr
	}
	return hookErr
}

// SendLowStockReport mails the low-stock summary to the configured address.
func (s *Sender) SendLowStockReport(date, report string) error {
	subject := fmt.Sprintf("Low stock — %s", date)
	mailErr := s.sendMail(subject, report)
	hookErr := s.postWebhook(map[string]interface{}{
		"event":  "low_stock",
		"date":   date,
		"report": report,
	})
	if mailErr != nil {
		return mailErr
	}
	return hookErr
}

func (s *Sender) sendMail(subject, body string) error {
	if s.mail.SmtpHost == "" || s.mail.To == "" {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.mail.From)
	m.SetHeader("To", s.mail.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.mail.SmtpHost, s.mail.SmtpPort, s.mail.Username, s.mail.Password)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Warn("report mail failed",
			zap.String("to", s.mail.To), zap.Error(err))
		return err
	}
	return nil
}

func (s *Sender) postWebhook(payload map[string]interface{}) error {
	if s.webhook.Url == "" {
		return nil
	}
	var code int
	err := gout.POST(s.webhook.Url).
		SetTimeout(10 * time.Second).
		SetJSON(payload).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Warn("report webhook failed",
			zap.String("url", s.webhook.Url), zap.Error(err))
		return err
	}
	if code >= 300 {
		err = fmt.Errorf("webhook status %d", code)
		zap.L().Warn("report webhook rejected",
			zap.String("url", s.webhook.Url), zap.Int("code", code))
		return err
	}
	return nil
}
