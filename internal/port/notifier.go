package port

import (
	"context"

	"notaria/internal/domain"
)

// Notifier tells the case owner about status changes that need attention.
type Notifier interface {
	NotifyCaseStatus(ctx context.Context, c *domain.Case) error
}
