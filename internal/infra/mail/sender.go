package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/restriden/simpli-immo-sub002/internal/infra/queue"
)

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// SendMaklerNotification mails the backoffice that a lead's makler was
// notified. Consumed by the queue worker, one mail per event.
func (s *EmailSender) SendMaklerNotification(payload queue.LeadNotificationPayload) error {
	data := MaklerNotificationData{
		LeadName:   payload.LeadName,
		LeadID:     payload.LeadID,
		Action:     payload.Action,
		NotifiedAt: payload.NotifiedAt.Format(time.RFC1123),
	}

	tmplPath := filepath.Join("templates", "makler_notification.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("read mail template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("render mail template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("🔔 Makler benachrichtigt: %s", payload.LeadName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail via SMTP: %w", err)
	}

	return nil
}
