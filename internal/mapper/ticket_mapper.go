package mapper

import (
	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/model"
)

type TicketMapper struct{}

func NewTicketMapper() *TicketMapper {
	return &TicketMapper{}
}

func (m *TicketMapper) TicketToEntity(t *model.Ticket) *entity.Ticket {
	if t == nil {
		return nil
	}
	return &entity.Ticket{
		Id:        t.Id,
		UserId:    t.UserId,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *TicketMapper) TicketToModel(t *entity.Ticket) *model.Ticket {
	if t == nil {
		return nil
	}
	return &model.Ticket{
		Id:        t.Id,
		UserId:    t.UserId,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *TicketMapper) MessageToEntity(msg *model.TicketMessage) *entity.TicketMessage {
	if msg == nil {
		return nil
	}
	return &entity.TicketMessage{
		Id:        msg.Id,
		TicketId:  msg.TicketId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *TicketMapper) MessageToModel(msg *entity.TicketMessage) *model.TicketMessage {
	if msg == nil {
		return nil
	}
	return &model.TicketMessage{
		Id:        msg.Id,
		TicketId:  msg.TicketId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
