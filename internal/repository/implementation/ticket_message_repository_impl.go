package implementation

import (
	"context"

	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/mapper"
	"support-assistant-be/internal/model"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TicketMapper
}

func NewTicketMessageRepository(db *gorm.DB) contract.TicketMessageRepository {
	return &TicketMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewTicketMapper(),
	}
}

func (r *TicketMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TicketMessageRepositoryImpl) Create(ctx context.Context, message *entity.TicketMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

// FindRecentByTicketId selects the newest `limit` rows and flips them back to
// ascending order, so callers get bounded recent context, oldest first.
func (r *TicketMessageRepositoryImpl) FindRecentByTicketId(ctx context.Context, ticketId uuid.UUID, limit int) ([]*entity.TicketMessage, error) {
	query := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketId).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []*model.TicketMessage
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.TicketMessage, len(models))
	for i, m := range models {
		entities[len(models)-1-i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *TicketMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TicketMessage, error) {
	var models []*model.TicketMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TicketMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *TicketMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TicketMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
