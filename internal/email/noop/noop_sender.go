package noop

import (
	"context"
	"log"

	"notaria/internal/domain"
	"notaria/internal/email"
	"notaria/internal/port"
)

type noopNotifier struct {
	frontendURL string
}

// NewNoopNotifier creates a Notifier that logs case links instead of sending mail.
func NewNoopNotifier(frontendURL string) port.Notifier {
	return &noopNotifier{frontendURL: frontendURL}
}

func (n *noopNotifier) NotifyCaseStatus(_ context.Context, c *domain.Case) error {
	msg, ok := email.BuildCaseStatusMessage(n.frontendURL, c)
	if !ok {
		return nil
	}
	log.Printf("[NOOP EMAIL] %s for %q (case %s): %s", msg.Subject, c.ContactEmail, c.ID, email.CaseURL(n.frontendURL, c))
	return nil
}
