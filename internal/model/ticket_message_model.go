package model

import (
	"time"

	"github.com/google/uuid"
)

type TicketMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:varchar(32)"`
	Content   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TicketMessage) TableName() string {
	return "ticket_messages"
}
