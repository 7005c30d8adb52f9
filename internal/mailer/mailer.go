package mailer

import (
	"context"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer notifies listing owners by email.
type SMTPMailer struct {
	from   string
	send   func(m ...*gomail.Message) error
	logger *logger.Logger
}

func NewSMTPMailer(cfg Config, log *logger.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		from:   cfg.From,
		send:   d.DialAndSend,
		logger: log.Named("SMTPMailer"),
	}
}

// ListingPublished emails the owner the first time a listing goes live.
func (m *SMTPMailer) ListingPublished(_ context.Context, listing *domain.Listing) error {
	if listing.OwnerEmail == "" {
		m.logger.Warn("Listing has no owner email, skipping notification", zap.String("listing_id", listing.ID))
		return nil
	}

	msg := m.listingPublishedMessage(listing)
	if err := m.send(msg); err != nil {
		m.logger.Error("Failed to send listing published email",
			zap.String("listing_id", listing.ID), zap.String("to", listing.OwnerEmail), zap.Error(err))
		return fmt.Errorf("failed to send email to %s: %w", listing.OwnerEmail, err)
	}
	m.logger.Info("Listing published email sent", zap.String("listing_id", listing.ID), zap.String("to", listing.OwnerEmail))
	return nil
}

func (m *SMTPMailer) listingPublishedMessage(listing *domain.Listing) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", listing.OwnerEmail)
	msg.SetHeader("Subject", "Your listing is now published")
	msg.SetBody("text/plain", fmt.Sprintf("Your listing '%s' is now visible to everyone.", listing.Title))
	return msg
}
