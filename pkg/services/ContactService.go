package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sony/gobreaker/v2"
)

const contactFailureThreshold = 5

type ContactMessage struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}

func (m ContactMessage) Normalized() ContactMessage {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
	return m
}

type ContactSender interface {
	SendContact(message ContactMessage) error
}

type ContactServiceConfig struct {
	ApiKey string
	From   string
	To     string
}

type ContactService struct {
	breaker *gobreaker.CircuitBreaker[*resend.SendEmailResponse]
	client  *resend.Client
	from    string
	to      string
}

/*
NewContactService builds the relay. Sends go through a circuit breaker so a
provider outage fails fast instead of holding visitor requests open.
*/
func NewContactService(config ContactServiceConfig) ContactService {
	settings := gobreaker.Settings{
		Name:        "contact-relay",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= contactFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("contact relay circuit changed state", "from", from.String(), "to", to.String())
		},
	}

	return ContactService{
		breaker: gobreaker.NewCircuitBreaker[*resend.SendEmailResponse](settings),
		client:  resend.NewClient(config.ApiKey),
		from:    config.From,
		to:      config.To,
	}
}

/*
SendContact relays a visitor message. The visitor's address becomes the
reply-to so answering goes straight back to them. The provider's error
message is returned unchanged.
*/
func (s ContactService) SendContact(message ContactMessage) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		ReplyTo: message.Email,
		Subject: fmt.Sprintf("New message from %s", message.Name),
		Text:    fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", message.Name, message.Email, message.Message),
	}

	_, err := s.breaker.Execute(func() (*resend.SendEmailResponse, error) {
		return s.client.Emails.Send(params)
	})

	return err
}
