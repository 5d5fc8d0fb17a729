package model

import (
	"time"

	"github.com/google/uuid"
)

// Ticket rows carry the lifecycle status directly; there is no soft delete.
// The partial unique index keeps the at-most-one-open-per-user invariant even
// when two turns race on first contact.
type Ticket struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    int64     `gorm:"index;uniqueIndex:uniq_open_ticket_per_user,where:status = 'open'"`
	Status    string    `gorm:"type:varchar(32);default:'open'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Messages []TicketMessage `gorm:"foreignKey:TicketId;constraint:OnDelete:CASCADE"`
}

func (Ticket) TableName() string {
	return "tickets"
}
