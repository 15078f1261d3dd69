package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
	HTML      string
}

type SendGrid struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGrid(apiKey, fromName, fromAddress string) (*SendGrid, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	if strings.TrimSpace(fromAddress) == "" {
		return nil, fmt.Errorf("sender address is empty")
	}

	return &SendGrid{
		client: sendgrid.NewSendClient(strings.TrimSpace(apiKey)),
		from:   sgmail.NewEmail(fromName, fromAddress),
	}, nil
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("sendgrid client is not initialized")
	}
	if strings.TrimSpace(msg.ToAddress) == "" {
		return fmt.Errorf("recipient address is required")
	}

	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	message := sgmail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}
