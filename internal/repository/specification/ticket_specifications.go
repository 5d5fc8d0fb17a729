package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByUserID struct {
	UserID int64
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByTicketID struct {
	TicketID uuid.UUID
}

func (s ByTicketID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ticket_id = ?", s.TicketID)
}
