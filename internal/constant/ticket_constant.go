package constant

const (
	TicketStatusOpen       = "open"
	TicketStatusResolved   = "resolved"
	TicketStatusNeedsAgent = "needs_agent"

	TicketMessageRoleUser      = "user"
	TicketMessageRoleAssistant = "assistant"
	TicketMessageRoleSystem    = "system"
)

const (
	StatusTextResolved   = "Status updated: resolved."
	StatusTextNeedsAgent = "Status updated: needs a specialist."

	NoticeTicketClosed  = "Ticket already closed."
	NoticeForeignTicket = "This ticket belongs to another user."
	NoticeUnknownAction = "Unknown action."

	GreetingText = "Hi! I am the stationery store assistant. Ask about orders, delivery, " +
		"returns, or product availability."
	EmptyMessagePrompt = "Please send a text message so I can help you."
	GenericApology     = "Sorry, something went wrong on my side. Please try again in a moment."
	EscalationNotice   = "I have asked a specialist to join this conversation."

	KeyboardResolvedLabel   = "Resolved"
	KeyboardNeedsAgentLabel = "Need specialist"
)
