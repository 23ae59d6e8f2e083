package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tanvirio/contactbook/pkg/logging"
)

type fakeSender struct {
	sent []EmailMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSendWelcome(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, logging.Default())

	if err := svc.SendWelcome(context.Background(), "me@example.com", "Tanvir"); err != nil {
		t.Fatalf("send welcome: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "me@example.com" {
		t.Errorf("to: %s", msg.To)
	}
	if !strings.Contains(msg.Body, "Tanvir") {
		t.Errorf("body missing name: %s", msg.Body)
	}
}

func TestSendWelcomeNoSenderConfigured(t *testing.T) {
	svc := NewService(nil, logging.Default())

	if err := svc.SendWelcome(context.Background(), "me@example.com", "Tanvir"); err != nil {
		t.Fatalf("nil sender must be a no-op, got %v", err)
	}
}

func TestSendWelcomeSurfacesSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("rate limited")}
	svc := NewService(sender, logging.New("error", ""))

	if err := svc.SendWelcome(context.Background(), "me@example.com", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendPasswordChanged(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, logging.Default())

	if err := svc.SendPasswordChanged(context.Background(), "me@example.com", ""); err != nil {
		t.Fatalf("send password changed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Subject, "password") {
		t.Errorf("subject: %s", sender.sent[0].Subject)
	}
}

func TestNewSendGridSenderDisabledWithoutKey(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{}, nil); s != nil {
		t.Error("expected nil sender without API key")
	}
}

// The server wires the SendGrid sender straight into NewService; without
// an API key that is a typed nil and must still behave as disabled.
func TestServiceWithUnconfiguredSendGridSender(t *testing.T) {
	svc := NewService(NewSendGridSender(SendGridConfig{}, nil), logging.Default())

	if err := svc.SendWelcome(context.Background(), "me@example.com", "Tanvir"); err != nil {
		t.Fatalf("welcome must be a no-op without a sender, got %v", err)
	}
	if err := svc.SendPasswordChanged(context.Background(), "me@example.com", "Tanvir"); err != nil {
		t.Fatalf("password notice must be a no-op without a sender, got %v", err)
	}
}
