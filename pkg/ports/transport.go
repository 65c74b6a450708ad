package ports

import (
	"context"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// Transport is the abstract messaging boundary. Bodies are already
// rendered in the transport's markup dialect by the formatter; the
// transport only moves them.
type Transport interface {
	// SendText sends a plain message.
	SendText(ctx context.Context, identity, body string) error

	// SendButtons sends a message with a button grid attached.
	SendButtons(ctx context.Context, identity, body string, kb domain.Keyboard) error

	// EditLast replaces the body and keyboard of the most recent
	// button message for the identity. Implementations fall back to
	// SendButtons when there is nothing to edit.
	EditLast(ctx context.Context, identity, body string, kb domain.Keyboard) error

	// SendDocument uploads a document artifact.
	SendDocument(ctx context.Context, identity string, data []byte, filename string) error
}
