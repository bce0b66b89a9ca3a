package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/localpop/localpop-backend/pkg/config"
)

// Sender delivers one message to the mail provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGridSender builds a sender backed by the SendGrid v3 API.
func NewSendGridSender(cfg config.MailConfig) (Sender, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("from address is required")
	}
	return &sendgridSender{
		client:   sendgrid.NewSendClient(cfg.SendgridAPIKey),
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
	}, nil
}

func (s *sendgridSender) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(s.fromName, s.fromAddr)
	to := sgmail.NewEmail("", msg.To)

	plain := msg.Body
	html := ""
	if msg.HTML {
		plain = ""
		html = msg.Body
	}

	resp, err := s.client.SendWithContext(ctx, sgmail.NewSingleEmail(from, msg.Subject, to, plain, html))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
