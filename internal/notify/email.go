package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
)

var (
	errSMTPHostRequired = errors.New("smtp host is required")
	errSMTPFromRequired = errors.New("smtp from address is required")
	errOpsInboxRequired = errors.New("smtp ops inbox is required")
)

// EmailProvider delivers notifications to the operations inbox over SMTP.
type EmailProvider struct {
	cfg config.SMTPConfig
}

func NewEmailProvider(cfg config.SMTPConfig) (*EmailProvider, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errSMTPHostRequired
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errSMTPFromRequired
	}
	if strings.TrimSpace(cfg.OpsInbox) == "" {
		return nil, errOpsInboxRequired
	}
	return &EmailProvider{cfg: cfg}, nil
}

func (p *EmailProvider) Send(ctx context.Context, msg Message) error {
	mail := gomail.NewMsg()
	if err := mail.From(p.cfg.From); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := mail.To(p.cfg.OpsInbox); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	subject := msg.Subject
	if subject == "" {
		subject = "Booking update"
	}
	mail.Subject(subject)

	body := msg.Body
	if len(msg.MediaURLs) > 0 {
		body += "\n\n" + strings.Join(msg.MediaURLs, "\n")
	}
	mail.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(p.cfg.Host,
		gomail.WithPort(p.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(p.cfg.Username),
		gomail.WithPassword(p.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mail); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
