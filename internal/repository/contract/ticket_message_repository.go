package contract

import (
	"context"

	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TicketMessageRepository interface {
	Create(ctx context.Context, message *entity.TicketMessage) error
	// FindRecentByTicketId returns the most recent `limit` messages for the
	// ticket in ascending insertion order. A non-positive limit returns the
	// full history.
	FindRecentByTicketId(ctx context.Context, ticketId uuid.UUID, limit int) ([]*entity.TicketMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TicketMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
