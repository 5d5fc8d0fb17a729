package contract

import (
	"context"

	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	// FindOpenByUserId returns the user's open ticket, or nil when none exists.
	FindOpenByUserId(ctx context.Context, userId int64) (*entity.Ticket, error)
	// UpdateStatus persists a status transition and returns the updated
	// ticket, or nil when the ticket does not exist.
	UpdateStatus(ctx context.Context, ticketId uuid.UUID, status string) (*entity.Ticket, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Ticket, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Ticket, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
