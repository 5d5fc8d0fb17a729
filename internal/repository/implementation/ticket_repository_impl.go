package implementation

import (
	"context"
	"errors"
	"time"

	"support-assistant-be/internal/constant"
	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/mapper"
	"support-assistant-be/internal/model"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TicketMapper
}

func NewTicketRepository(db *gorm.DB) contract.TicketRepository {
	return &TicketRepositoryImpl{
		db:     db,
		mapper: mapper.NewTicketMapper(),
	}
}

func (r *TicketRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.Id == uuid.Nil {
		ticket.Id = uuid.New()
	}
	if ticket.Status == "" {
		ticket.Status = constant.TicketStatusOpen
	}
	m := r.mapper.TicketToModel(ticket)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*ticket = *r.mapper.TicketToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) FindOpenByUserId(ctx context.Context, userId int64) (*entity.Ticket, error) {
	return r.FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByStatus{Status: constant.TicketStatusOpen},
	)
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, ticketId uuid.UUID, status string) (*entity.Ticket, error) {
	var m model.Ticket
	if err := r.db.WithContext(ctx).First(&m, "id = ?", ticketId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, err
	}
	return r.mapper.TicketToEntity(&m), nil
}

func (r *TicketRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Ticket, error) {
	var m model.Ticket
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TicketToEntity(&m), nil
}

func (r *TicketRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Ticket, error) {
	var models []*model.Ticket
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Ticket, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TicketToEntity(m)
	}
	return entities, nil
}

func (r *TicketRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Ticket{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
