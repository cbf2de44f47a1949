package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WelcomeMessage is the payload dispatched after an account is provisioned.
type WelcomeMessage struct {
	TenantID          uuid.UUID `json:"tenant_id"`
	AccountID         uuid.UUID `json:"account_id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	Role              string    `json:"role"`
	TemporaryPassword string    `json:"temporary_password"`
}

// Notifier delivers welcome messages. Delivery is fire-and-forget from the
// pipeline's perspective: a failed send never fails the row it belongs to.
type Notifier interface {
	SendWelcome(ctx context.Context, msg WelcomeMessage) error
}

// Noop is used when no message broker is configured.
type Noop struct{}

func (Noop) SendWelcome(_ context.Context, msg WelcomeMessage) error {
	log.Debug().Str("email", msg.Email).Msg("welcome notification skipped, no broker configured")
	return nil
}
