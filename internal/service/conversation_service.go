package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"support-assistant-be/internal/constant"
	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/internal/repository/specification"
	"support-assistant-be/internal/repository/unitofwork"
	"support-assistant-be/internal/transport"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/llm"
	"support-assistant-be/pkg/triage"
	"support-assistant-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// ChunkSearcher is the retrieval slice of the vector store the orchestrator
// needs. nil disables retrieval augmentation.
type ChunkSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]vectorstore.Hit, error)
}

type IConversationService interface {
	HandleStart(ctx context.Context, upd transport.Update) error
	HandleMessage(ctx context.Context, upd transport.Update) error
	HandleCallback(ctx context.Context, cb transport.Callback) error
}

type ConversationOptions struct {
	Profile       string
	HistoryWindow int
	RetrievalTopK int
}

type conversationService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.Provider
	embedder    embedding.Provider
	searcher    ChunkSearcher
	triage      triage.Strategy
	messenger   transport.Messenger
	logger      logger.ILogger

	profile       string
	historyWindow int
	retrievalTopK int

	// lastKeyboard maps chat id -> message id of the last sent message that
	// carries action buttons, so the previous turn's controls can be cleared.
	lastKeyboard *cache.Cache
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	embedder embedding.Provider,
	searcher ChunkSearcher,
	strategy triage.Strategy,
	messenger transport.Messenger,
	sysLogger logger.ILogger,
	opts ConversationOptions,
) IConversationService {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 20
	}
	if opts.RetrievalTopK <= 0 {
		opts.RetrievalTopK = 5
	}
	if opts.Profile == "" {
		opts.Profile = constant.DefaultAssistantProfile
	}
	return &conversationService{
		uowFactory:    uowFactory,
		llmProvider:   llmProvider,
		embedder:      embedder,
		searcher:      searcher,
		triage:        strategy,
		messenger:     messenger,
		logger:        sysLogger,
		profile:       opts.Profile,
		historyWindow: opts.HistoryWindow,
		retrievalTopK: opts.RetrievalTopK,
		lastKeyboard:  cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

func (s *conversationService) HandleStart(ctx context.Context, upd transport.Update) error {
	_, err := s.messenger.SendMessage(ctx, upd.ChatID, constant.GreetingText, nil)
	return err
}

func (s *conversationService) HandleMessage(ctx context.Context, upd transport.Update) error {
	if strings.TrimSpace(upd.Text) == "" || upd.UserID == 0 {
		_, err := s.messenger.SendMessage(ctx, upd.ChatID, constant.EmptyMessagePrompt, nil)
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	tickets := uow.TicketRepository()
	messages := uow.TicketMessageRepository()

	ticket, err := s.resolveTicket(ctx, tickets, upd.UserID)
	if err != nil {
		s.logger.Error("conversation", "resolve ticket failed", map[string]interface{}{
			"user_id": upd.UserID,
			"error":   err.Error(),
		})
		_, sendErr := s.messenger.SendMessage(ctx, upd.ChatID, constant.GenericApology, nil)
		return errors.Join(err, sendErr)
	}

	history, err := messages.FindRecentByTicketId(ctx, ticket.Id, s.historyWindow)
	if err != nil {
		s.logger.Error("conversation", "load history failed", map[string]interface{}{
			"ticket_id": ticket.Id.String(),
			"error":     err.Error(),
		})
		_, sendErr := s.messenger.SendMessage(ctx, upd.ChatID, constant.GenericApology, nil)
		return errors.Join(err, sendErr)
	}

	systemPrompt := s.buildSystemPrompt(ctx, history, upd.Text)

	// Persist the user's utterance before the completion call so a provider
	// failure cannot lose it.
	if err := messages.Create(ctx, &entity.TicketMessage{
		TicketId: ticket.Id,
		Role:     constant.TicketMessageRoleUser,
		Content:  upd.Text,
	}); err != nil {
		s.logger.Error("conversation", "persist user message failed", map[string]interface{}{
			"ticket_id": ticket.Id.String(),
			"error":     err.Error(),
		})
		_, sendErr := s.messenger.SendMessage(ctx, upd.ChatID, constant.GenericApology, nil)
		return errors.Join(err, sendErr)
	}

	completion, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: upd.Text},
	})
	if err != nil {
		s.logger.Error("conversation", "completion failed", map[string]interface{}{
			"ticket_id": ticket.Id.String(),
			"user_id":   upd.UserID,
			"error":     err.Error(),
		})
		_, sendErr := s.messenger.SendMessage(ctx, upd.ChatID, constant.GenericApology, nil)
		return errors.Join(err, sendErr)
	}
	s.logger.Info("conversation", "completion received", map[string]interface{}{
		"ticket_id":     ticket.Id.String(),
		"model":         completion.Meta.Model,
		"request_id":    completion.Meta.RequestID,
		"total_tokens":  completion.Meta.TotalTokens,
		"prompt_tokens": completion.Meta.PromptTokens,
	})

	escalated := s.triage.NeedsAgent(completion.Text)
	outbound := s.triage.CleanAnswer(completion.Text)
	if outbound == "" {
		outbound = constant.GenericApology
	}

	if escalated {
		// Best-effort: a failed status write must not block the reply.
		if _, err := tickets.UpdateStatus(ctx, ticket.Id, constant.TicketStatusNeedsAgent); err != nil {
			s.logger.Warn("conversation", "escalation status update failed", map[string]interface{}{
				"ticket_id": ticket.Id.String(),
				"error":     err.Error(),
			})
		} else if err := messages.Create(ctx, &entity.TicketMessage{
			TicketId: ticket.Id,
			Role:     constant.TicketMessageRoleSystem,
			Content:  constant.StatusTextNeedsAgent,
		}); err != nil {
			s.logger.Warn("conversation", "escalation system message failed", map[string]interface{}{
				"ticket_id": ticket.Id.String(),
				"error":     err.Error(),
			})
		}
		outbound = outbound + "\n\n" + constant.EscalationNotice
	}

	// Best-effort persistence of the reply itself.
	if err := messages.Create(ctx, &entity.TicketMessage{
		TicketId: ticket.Id,
		Role:     constant.TicketMessageRoleAssistant,
		Content:  completion.Text,
	}); err != nil {
		s.logger.Warn("conversation", "persist assistant message failed", map[string]interface{}{
			"ticket_id": ticket.Id.String(),
			"error":     err.Error(),
		})
	}

	var keyboard transport.Keyboard
	if !escalated {
		keyboard = ticketKeyboard(ticket.Id)
	}

	s.clearPreviousKeyboard(ctx, upd.ChatID)

	messageID, err := s.messenger.SendMessage(ctx, upd.ChatID, outbound, keyboard)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	if keyboard != nil {
		s.lastKeyboard.Set(chatKey(upd.ChatID), messageID, cache.NoExpiration)
	}
	return nil
}

func (s *conversationService) HandleCallback(ctx context.Context, cb transport.Callback) error {
	kind, ticketID, err := transport.DecodeAction(cb.Data)
	if err != nil {
		s.logger.Info("conversation", "callback rejected", map[string]interface{}{
			"user_id": cb.UserID,
			"data":    cb.Data,
			"reason":  err.Error(),
		})
		return s.messenger.AnswerCallback(ctx, cb.CallbackID, constant.NoticeUnknownAction)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	tickets := uow.TicketRepository()

	ticket, err := tickets.FindOne(ctx, specification.ByID{ID: ticketID})
	if err != nil {
		s.logger.Error("conversation", "callback ticket lookup failed", map[string]interface{}{
			"ticket_id": ticketID.String(),
			"error":     err.Error(),
		})
		return s.messenger.AnswerCallback(ctx, cb.CallbackID, constant.GenericApology)
	}
	if ticket == nil {
		return s.messenger.AnswerCallback(ctx, cb.CallbackID, constant.NoticeUnknownAction)
	}
	if ticket.UserId != cb.UserID {
		return s.messenger.AnswerCallback(ctx, cb.CallbackID, constant.NoticeForeignTicket)
	}
	if ticket.Status != constant.TicketStatusOpen {
		return s.messenger.AnswerCallback(ctx, cb.CallbackID, constant.NoticeTicketClosed)
	}

	status := constant.TicketStatusResolved
	statusText := constant.StatusTextResolved
	if kind == transport.ActionEscalate {
		status = constant.TicketStatusNeedsAgent
		statusText = constant.StatusTextNeedsAgent
	}

	if _, err := tickets.UpdateStatus(ctx, ticket.Id, status); err != nil {
		s.logger.Error("conversation", "callback status update failed", map[string]interface{}{
			"ticket_id": ticket.Id.String(),
			"status":    status,
			"error":     err.Error(),
		})
		return s.messenger.AnswerCallback(ctx, cb.CallbackID, constant.GenericApology)
	}
	if err := uow.TicketMessageRepository().Create(ctx, &entity.TicketMessage{
		TicketId: ticket.Id,
		Role:     constant.TicketMessageRoleSystem,
		Content:  statusText,
	}); err != nil {
		s.logger.Warn("conversation", "callback system message failed", map[string]interface{}{
			"ticket_id": ticket.Id.String(),
			"error":     err.Error(),
		})
	}

	if err := s.messenger.EditMessage(ctx, cb.ChatID, cb.MessageID, statusText, nil); err != nil {
		s.logger.Warn("conversation", "callback message edit failed", map[string]interface{}{
			"chat_id":    cb.ChatID,
			"message_id": cb.MessageID,
			"error":      err.Error(),
		})
	}
	return s.messenger.AnswerCallback(ctx, cb.CallbackID, "Updated.")
}

// resolveTicket finds the user's open ticket or creates one. A lost creation
// race surfaces as a duplicate-key error; the winner's ticket is re-read.
func (s *conversationService) resolveTicket(ctx context.Context, tickets contract.TicketRepository, userID int64) (*entity.Ticket, error) {
	ticket, err := tickets.FindOpenByUserId(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ticket != nil {
		return ticket, nil
	}

	ticket = &entity.Ticket{
		UserId: userID,
		Status: constant.TicketStatusOpen,
	}
	if err := tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return tickets.FindOpenByUserId(ctx, userID)
		}
		return nil, err
	}
	return ticket, nil
}

func (s *conversationService) buildSystemPrompt(ctx context.Context, history []*entity.TicketMessage, userText string) string {
	var b strings.Builder
	b.WriteString(s.profile)

	if _, isMarker := s.triage.(triage.MarkerStrategy); isMarker {
		b.WriteString("\n")
		b.WriteString(constant.MarkerInstruction)
	}

	if s.searcher != nil && s.embedder != nil {
		if kb := s.retrieveContext(ctx, userText); kb != "" {
			b.WriteString("\n\nKnowledge base:\n")
			b.WriteString(kb)
		}
	}

	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		for _, msg := range history {
			b.WriteString(msg.Role)
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// retrieveContext is strictly best-effort: any failure degrades to an
// unaugmented prompt.
func (s *conversationService) retrieveContext(ctx context.Context, userText string) string {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{userText})
	if err != nil || len(vectors) == 0 {
		s.logger.Warn("conversation", "query embedding failed", map[string]interface{}{
			"error": fmt.Sprint(err),
		})
		return ""
	}
	hits, err := s.searcher.Search(ctx, vectors[0], s.retrievalTopK)
	if err != nil {
		s.logger.Warn("conversation", "knowledge search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	var lines []string
	for _, hit := range hits {
		lines = append(lines, "- "+hit.Text)
	}
	return strings.Join(lines, "\n")
}

func (s *conversationService) clearPreviousKeyboard(ctx context.Context, chatID int64) {
	previous, found := s.lastKeyboard.Get(chatKey(chatID))
	if !found {
		return
	}
	messageID, ok := previous.(int64)
	if !ok {
		return
	}
	if err := s.messenger.EditKeyboard(ctx, chatID, messageID, nil); err != nil {
		s.logger.Warn("conversation", "clear previous keyboard failed", map[string]interface{}{
			"chat_id":    chatID,
			"message_id": messageID,
			"error":      err.Error(),
		})
	}
	s.lastKeyboard.Delete(chatKey(chatID))
}

func ticketKeyboard(ticketID uuid.UUID) transport.Keyboard {
	return transport.Keyboard{{
		{Text: constant.KeyboardResolvedLabel, CallbackData: transport.EncodeAction(transport.ActionResolve, ticketID)},
		{Text: constant.KeyboardNeedsAgentLabel, CallbackData: transport.EncodeAction(transport.ActionEscalate, ticketID)},
	}}
}

func chatKey(chatID int64) string {
	return fmt.Sprintf("%d", chatID)
}
