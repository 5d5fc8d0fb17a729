package transport

import "context"

// Update is an inbound text message from the chat gateway.
type Update struct {
	ChatID    int64
	UserID    int64
	MessageID int64
	Text      string
}

// Callback is an inbound button tap. Data round-trips the token that was
// attached to the keyboard when the message was sent.
type Callback struct {
	ChatID     int64
	UserID     int64
	MessageID  int64
	CallbackID string
	Data       string
}

// Button is one inline action control.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Keyboard is rows of buttons. A nil keyboard means "no affordance"; an
// explicit empty keyboard on an edit removes an existing one.
type Keyboard [][]Button

// Messenger is the outbound half of the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error)
	EditMessage(ctx context.Context, chatID, messageID int64, text string, keyboard Keyboard) error
	// EditKeyboard replaces only the affordance of a previously sent message,
	// leaving its text intact. A nil keyboard clears it.
	EditKeyboard(ctx context.Context, chatID, messageID int64, keyboard Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
