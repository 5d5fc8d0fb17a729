package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActionKind tags what a ticket button does.
type ActionKind string

const (
	ActionResolve  ActionKind = "resolved"
	ActionEscalate ActionKind = "needs_agent"
)

const actionNamespace = "ticket"

var (
	ErrMalformedAction = errors.New("malformed action token")
	ErrUnknownAction   = errors.New("unknown action kind")
)

// EncodeAction builds the callback token carried by a keyboard button.
func EncodeAction(kind ActionKind, ticketID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", actionNamespace, kind, ticketID)
}

// DecodeAction parses a callback token back into its kind and ticket id.
// Unknown kinds are a distinct error from malformed tokens.
func DecodeAction(data string) (ActionKind, uuid.UUID, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != actionNamespace {
		return "", uuid.Nil, ErrMalformedAction
	}

	kind := ActionKind(parts[1])
	if kind != ActionResolve && kind != ActionEscalate {
		return "", uuid.Nil, ErrUnknownAction
	}

	ticketID, err := uuid.Parse(parts[2])
	if err != nil {
		return "", uuid.Nil, ErrMalformedAction
	}
	return kind, ticketID, nil
}
