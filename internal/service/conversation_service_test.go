package service

import (
	"context"
	"strings"
	"testing"

	"support-assistant-be/internal/constant"
	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/internal/repository/specification"
	"support-assistant-be/internal/repository/unitofwork"
	"support-assistant-be/internal/transport"
	"support-assistant-be/pkg/llm"
	"support-assistant-be/pkg/triage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory repositories backing a fake unit of work.

type fakeTicketRepo struct {
	tickets map[uuid.UUID]*entity.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[uuid.UUID]*entity.Ticket{}}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.Id == uuid.Nil {
		ticket.Id = uuid.New()
	}
	if ticket.Status == "" {
		ticket.Status = constant.TicketStatusOpen
	}
	copied := *ticket
	r.tickets[ticket.Id] = &copied
	return nil
}

func (r *fakeTicketRepo) FindOpenByUserId(ctx context.Context, userId int64) (*entity.Ticket, error) {
	for _, t := range r.tickets {
		if t.UserId == userId && t.Status == constant.TicketStatusOpen {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) UpdateStatus(ctx context.Context, ticketId uuid.UUID, status string) (*entity.Ticket, error) {
	t, ok := r.tickets[ticketId]
	if !ok {
		return nil, nil
	}
	t.Status = status
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Ticket, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if t, found := r.tickets[byID.ID]; found {
				copied := *t
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	for _, t := range r.tickets {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTicketRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.tickets)), nil
}

type fakeMessageRepo struct {
	messages []*entity.TicketMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.TicketMessage) error {
	copied := *message
	if copied.Id == uuid.Nil {
		copied.Id = uuid.New()
	}
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) FindRecentByTicketId(ctx context.Context, ticketId uuid.UUID, limit int) ([]*entity.TicketMessage, error) {
	var out []*entity.TicketMessage
	for _, m := range r.messages {
		if m.TicketId == ticketId {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TicketMessage, error) {
	return r.messages, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.messages)), nil
}

func (r *fakeMessageRepo) byRole(role string) []*entity.TicketMessage {
	var out []*entity.TicketMessage
	for _, m := range r.messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

type fakeUnitOfWork struct {
	tickets  contract.TicketRepository
	messages contract.TicketMessageRepository
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) TicketRepository() contract.TicketRepository {
	return u.tickets
}

func (u *fakeUnitOfWork) TicketMessageRepository() contract.TicketMessageRepository {
	return u.messages
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeLLM struct {
	reply   string
	history [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message) (*llm.Completion, error) {
	f.history = append(f.history, history)
	return &llm.Completion{Text: f.reply, Meta: llm.Metadata{Model: "fake"}}, nil
}

type sentMessage struct {
	chatID   int64
	text     string
	keyboard transport.Keyboard
}

type fakeMessenger struct {
	sent            []sentMessage
	nextMessageID   int64
	edits           []sentMessage
	keyboardEdits   []int64
	callbackAnswers []string
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string, keyboard transport.Keyboard) (int64, error) {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeMessenger) EditMessage(ctx context.Context, chatID, messageID int64, text string, keyboard transport.Keyboard) error {
	f.edits = append(f.edits, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeMessenger) EditKeyboard(ctx context.Context, chatID, messageID int64, keyboard transport.Keyboard) error {
	f.keyboardEdits = append(f.keyboardEdits, messageID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.callbackAnswers = append(f.callbackAnswers, text)
	return nil
}

type conversationFixture struct {
	svc       IConversationService
	tickets   *fakeTicketRepo
	messages  *fakeMessageRepo
	llm       *fakeLLM
	messenger *fakeMessenger
}

func newConversationFixture(reply string) *conversationFixture {
	tickets := newFakeTicketRepo()
	messages := &fakeMessageRepo{}
	llmProvider := &fakeLLM{reply: reply}
	messenger := &fakeMessenger{}

	svc := NewConversationService(
		&fakeFactory{uow: &fakeUnitOfWork{tickets: tickets, messages: messages}},
		llmProvider,
		nil,
		nil,
		triage.MarkerStrategy{},
		messenger,
		newNopLogger(),
		ConversationOptions{Profile: "You are a test assistant.", HistoryWindow: 20},
	)
	return &conversationFixture{
		svc:       svc,
		tickets:   tickets,
		messages:  messages,
		llm:       llmProvider,
		messenger: messenger,
	}
}

func TestHandleMessageCreatesTicketAndReplies(t *testing.T) {
	fx := newConversationFixture("Blue pens are in stock.")

	err := fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "Do you have blue pens?"})
	require.NoError(t, err)

	// One open ticket for the user.
	ticket, err := fx.tickets.FindOpenByUserId(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, constant.TicketStatusOpen, ticket.Status)

	// Both turn halves persisted.
	users := fx.messages.byRole(constant.TicketMessageRoleUser)
	require.Len(t, users, 1)
	assert.Equal(t, "Do you have blue pens?", users[0].Content)
	assistants := fx.messages.byRole(constant.TicketMessageRoleAssistant)
	require.Len(t, assistants, 1)
	assert.Equal(t, "Blue pens are in stock.", assistants[0].Content)

	// Reply carries both action buttons bound to this ticket.
	require.Len(t, fx.messenger.sent, 1)
	sent := fx.messenger.sent[0]
	assert.Equal(t, "Blue pens are in stock.", sent.text)
	require.Len(t, sent.keyboard, 1)
	require.Len(t, sent.keyboard[0], 2)
	kind, id, err := transport.DecodeAction(sent.keyboard[0][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, transport.ActionResolve, kind)
	assert.Equal(t, ticket.Id, id)
	kind, id, err = transport.DecodeAction(sent.keyboard[0][1].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, transport.ActionEscalate, kind)
	assert.Equal(t, ticket.Id, id)
}

// racingTicketRepo simulates losing the first-contact creation race: the
// first Create fails with a unique violation after a concurrent winner has
// already committed its open ticket.
type racingTicketRepo struct {
	*fakeTicketRepo
	raced bool
}

func (r *racingTicketRepo) Create(ctx context.Context, ticket *entity.Ticket) error {
	if !r.raced {
		r.raced = true
		winner := &entity.Ticket{UserId: ticket.UserId, Status: constant.TicketStatusOpen}
		if err := r.fakeTicketRepo.Create(ctx, winner); err != nil {
			return err
		}
		return gorm.ErrDuplicatedKey
	}
	return r.fakeTicketRepo.Create(ctx, ticket)
}

func TestHandleMessageSurvivesCreationRace(t *testing.T) {
	base := newFakeTicketRepo()
	racing := &racingTicketRepo{fakeTicketRepo: base}
	messages := &fakeMessageRepo{}
	messenger := &fakeMessenger{}
	llmProvider := &fakeLLM{reply: "Happy to help."}

	svc := NewConversationService(
		&fakeFactory{uow: &fakeUnitOfWork{tickets: racing, messages: messages}},
		llmProvider,
		nil,
		nil,
		triage.MarkerStrategy{},
		messenger,
		newNopLogger(),
		ConversationOptions{Profile: "You are a test assistant."},
	)

	err := svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "Hello?"})
	require.NoError(t, err)

	// The losing turn re-reads and continues on the winner's ticket, so the
	// invariant holds: exactly one ticket for the user.
	count, err := base.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	winner, err := base.FindOpenByUserId(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, winner)

	for _, m := range messages.messages {
		assert.Equal(t, winner.Id, m.TicketId)
	}
	require.Len(t, messenger.sent, 1)
	require.Len(t, messenger.sent[0].keyboard, 1)
	_, id, err := transport.DecodeAction(messenger.sent[0].keyboard[0][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, winner.Id, id)
}

func TestHandleMessageReusesOpenTicket(t *testing.T) {
	fx := newConversationFixture("Sure.")

	require.NoError(t, fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "First"}))
	require.NoError(t, fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "Second"}))

	count, err := fx.tickets.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// The second turn clears the first turn's keyboard before replying.
	require.Len(t, fx.messenger.keyboardEdits, 1)
	assert.EqualValues(t, 1, fx.messenger.keyboardEdits[0])
}

func TestHandleMessageEscalatesOnSentinel(t *testing.T) {
	fx := newConversationFixture("I cannot verify that order.\n[[NEEDS_SPECIALIST]]")

	err := fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "Where is order 991?"})
	require.NoError(t, err)

	// Ticket escalated and the transition is recorded in the transcript.
	tickets, err := fx.tickets.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, constant.TicketStatusNeedsAgent, tickets[0].Status)

	systems := fx.messages.byRole(constant.TicketMessageRoleSystem)
	require.Len(t, systems, 1)
	assert.Equal(t, constant.StatusTextNeedsAgent, systems[0].Content)

	// The raw completion (sentinel included) is what the transcript keeps.
	assistants := fx.messages.byRole(constant.TicketMessageRoleAssistant)
	require.Len(t, assistants, 1)
	assert.Contains(t, assistants[0].Content, "[[NEEDS_SPECIALIST]]")

	// The user sees the cleaned text plus the handoff notice, and no buttons.
	require.Len(t, fx.messenger.sent, 1)
	sent := fx.messenger.sent[0]
	assert.NotContains(t, sent.text, "[[NEEDS_SPECIALIST]]")
	assert.True(t, strings.HasPrefix(sent.text, "I cannot verify that order."))
	assert.Contains(t, sent.text, constant.EscalationNotice)
	assert.Nil(t, sent.keyboard)
}

func TestHandleMessageRejectsEmptyText(t *testing.T) {
	fx := newConversationFixture("unused")

	err := fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "   "})
	require.NoError(t, err)

	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, constant.EmptyMessagePrompt, fx.messenger.sent[0].text)
	assert.Empty(t, fx.llm.history)

	count, err := fx.tickets.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleStart(t *testing.T) {
	fx := newConversationFixture("unused")

	require.NoError(t, fx.svc.HandleStart(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "/start"}))

	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, constant.GreetingText, fx.messenger.sent[0].text)
	assert.Empty(t, fx.llm.history)
}

func TestHandleCallbackResolves(t *testing.T) {
	fx := newConversationFixture("unused")

	ticket := &entity.Ticket{UserId: 42, Status: constant.TicketStatusOpen}
	require.NoError(t, fx.tickets.Create(context.Background(), ticket))

	cb := transport.Callback{
		ChatID:     7,
		UserID:     42,
		MessageID:  11,
		CallbackID: "cb-1",
		Data:       transport.EncodeAction(transport.ActionResolve, ticket.Id),
	}
	require.NoError(t, fx.svc.HandleCallback(context.Background(), cb))

	updated, err := fx.tickets.FindOne(context.Background(), specification.ByID{ID: ticket.Id})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, constant.TicketStatusResolved, updated.Status)

	systems := fx.messages.byRole(constant.TicketMessageRoleSystem)
	require.Len(t, systems, 1)
	assert.Equal(t, constant.StatusTextResolved, systems[0].Content)

	// The tapped message is rewritten to the status text with no keyboard.
	require.Len(t, fx.messenger.edits, 1)
	assert.Equal(t, constant.StatusTextResolved, fx.messenger.edits[0].text)
	assert.Nil(t, fx.messenger.edits[0].keyboard)

	assert.Equal(t, []string{"Updated."}, fx.messenger.callbackAnswers)
}

func TestHandleCallbackOnClosedTicket(t *testing.T) {
	fx := newConversationFixture("unused")

	ticket := &entity.Ticket{UserId: 42, Status: constant.TicketStatusResolved}
	require.NoError(t, fx.tickets.Create(context.Background(), ticket))

	cb := transport.Callback{
		ChatID:     7,
		UserID:     42,
		CallbackID: "cb-2",
		Data:       transport.EncodeAction(transport.ActionEscalate, ticket.Id),
	}
	require.NoError(t, fx.svc.HandleCallback(context.Background(), cb))

	// Status unchanged, no transcript entry, no edit; just the notice.
	updated, err := fx.tickets.FindOne(context.Background(), specification.ByID{ID: ticket.Id})
	require.NoError(t, err)
	assert.Equal(t, constant.TicketStatusResolved, updated.Status)
	assert.Empty(t, fx.messages.messages)
	assert.Empty(t, fx.messenger.edits)
	assert.Equal(t, []string{constant.NoticeTicketClosed}, fx.messenger.callbackAnswers)
}

func TestHandleCallbackForeignUser(t *testing.T) {
	fx := newConversationFixture("unused")

	ticket := &entity.Ticket{UserId: 42, Status: constant.TicketStatusOpen}
	require.NoError(t, fx.tickets.Create(context.Background(), ticket))

	cb := transport.Callback{
		ChatID:     7,
		UserID:     99,
		CallbackID: "cb-3",
		Data:       transport.EncodeAction(transport.ActionResolve, ticket.Id),
	}
	require.NoError(t, fx.svc.HandleCallback(context.Background(), cb))

	updated, err := fx.tickets.FindOne(context.Background(), specification.ByID{ID: ticket.Id})
	require.NoError(t, err)
	assert.Equal(t, constant.TicketStatusOpen, updated.Status)
	assert.Equal(t, []string{constant.NoticeForeignTicket}, fx.messenger.callbackAnswers)
}

func TestHandleCallbackBadData(t *testing.T) {
	fx := newConversationFixture("unused")

	for _, data := range []string{"", "garbage", "ticket:reopened:" + uuid.NewString()} {
		cb := transport.Callback{ChatID: 7, UserID: 42, CallbackID: "cb", Data: data}
		require.NoError(t, fx.svc.HandleCallback(context.Background(), cb))
	}
	assert.Equal(t, []string{
		constant.NoticeUnknownAction,
		constant.NoticeUnknownAction,
		constant.NoticeUnknownAction,
	}, fx.messenger.callbackAnswers)
}

func TestHandleCallbackUnknownTicket(t *testing.T) {
	fx := newConversationFixture("unused")

	cb := transport.Callback{
		ChatID:     7,
		UserID:     42,
		CallbackID: "cb-4",
		Data:       transport.EncodeAction(transport.ActionResolve, uuid.New()),
	}
	require.NoError(t, fx.svc.HandleCallback(context.Background(), cb))
	assert.Equal(t, []string{constant.NoticeUnknownAction}, fx.messenger.callbackAnswers)
}

func TestHandleMessageSystemPromptCarriesHistory(t *testing.T) {
	fx := newConversationFixture("Noted.")

	require.NoError(t, fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "First question"}))
	require.NoError(t, fx.svc.HandleMessage(context.Background(), transport.Update{ChatID: 7, UserID: 42, Text: "Second question"}))

	require.Len(t, fx.llm.history, 2)
	second := fx.llm.history[1]
	require.Len(t, second, 2)
	assert.Equal(t, "system", second[0].Role)
	assert.Contains(t, second[0].Content, "Conversation so far:")
	assert.Contains(t, second[0].Content, "user: First question")
	assert.Contains(t, second[0].Content, "assistant: Noted.")
	assert.Equal(t, "Second question", second[1].Content)
}
