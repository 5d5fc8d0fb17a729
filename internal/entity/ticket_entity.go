package entity

import (
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	Id        uuid.UUID
	UserId    int64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TicketMessage struct {
	Id        uuid.UUID
	TicketId  uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}
