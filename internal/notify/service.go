package notify

import (
	"context"
	"fmt"

	"github.com/tanvirio/contactbook/pkg/logging"
)

// Service sends account lifecycle emails. A nil EmailSender disables
// sending; every method then becomes a no-op.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	// An unconfigured SendGrid sender arrives as a typed nil inside the
	// interface; fold it to a plain nil so the disabled checks hold.
	if s, ok := email.(*SendGridSender); ok && s == nil {
		email = nil
	}
	return &Service{email: email, logger: logger}
}

// SendWelcome emails a new account holder after registration. Failures
// are logged and returned but callers normally ignore them; registration
// never fails on email problems.
func (s *Service) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping welcome email")
		return nil
	}

	name := firstName
	if name == "" {
		name = "there"
	}
	msg := EmailMessage{
		To:      toEmail,
		ToName:  firstName,
		Subject: "Welcome to Contact Book",
		Body: fmt.Sprintf(`Hi %s,

Your account is ready. Add your first contact and it will be safely
backed up and searchable from any device.

The Contact Book team`, name),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: welcome email failed", "error", err, "to", toEmail)
		return err
	}
	return nil
}

// SendPasswordChanged emails a security notice after a password change.
func (s *Service) SendPasswordChanged(ctx context.Context, toEmail, firstName string) error {
	if s.email == nil {
		return nil
	}

	name := firstName
	if name == "" {
		name = "there"
	}
	msg := EmailMessage{
		To:      toEmail,
		ToName:  firstName,
		Subject: "Your password was changed",
		Body: fmt.Sprintf(`Hi %s,

The password for your Contact Book account was just changed. If this
was not you, reset your password immediately.

The Contact Book team`, name),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: password changed email failed", "error", err, "to", toEmail)
		return err
	}
	return nil
}
