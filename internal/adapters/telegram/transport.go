package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/mkuleshov/pgdbot/pkg/ports"
)

// Transport implements ports.Transport over the Bot API. Identities are
// decimal chat IDs. The last button-message ID per chat is tracked so
// that EditLast can rewrite the menu in place instead of stacking new
// messages.
type Transport struct {
	client *Client

	mu          sync.Mutex
	lastButtons map[string]int64 // identity -> message_id of the last keyboard message
}

// NewTransport wraps a Client as a dialog transport.
func NewTransport(client *Client) *Transport {
	return &Transport{
		client:      client,
		lastButtons: make(map[string]int64),
	}
}

var _ ports.Transport = (*Transport)(nil)

func chatID(identity string) (int64, error) {
	id, err := strconv.ParseInt(identity, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("identity %q is not a chat id: %w", identity, err)
	}
	return id, nil
}

func (t *Transport) SendText(ctx context.Context, identity, body string) error {
	id, err := chatID(identity)
	if err != nil {
		return err
	}
	_, err = t.client.SendMessage(ctx, id, body, nil)
	return err
}

func (t *Transport) SendButtons(ctx context.Context, identity, body string, kb domain.Keyboard) error {
	id, err := chatID(identity)
	if err != nil {
		return err
	}

	msgID, err := t.client.SendMessage(ctx, id, body, toMarkup(kb))
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.lastButtons[identity] = msgID
	t.mu.Unlock()
	return nil
}

func (t *Transport) EditLast(ctx context.Context, identity, body string, kb domain.Keyboard) error {
	id, err := chatID(identity)
	if err != nil {
		return err
	}

	t.mu.Lock()
	msgID, ok := t.lastButtons[identity]
	t.mu.Unlock()

	if !ok {
		return t.SendButtons(ctx, identity, body, kb)
	}
	return t.client.EditMessageText(ctx, id, msgID, body, toMarkup(kb))
}

func (t *Transport) SendDocument(ctx context.Context, identity string, data []byte, filename string) error {
	id, err := chatID(identity)
	if err != nil {
		return err
	}
	return t.client.SendDocument(ctx, id, data, filename)
}

// Forget drops the tracked message ID for an identity. Called when a
// conversation ends so a later session starts with a fresh menu message.
func (t *Transport) Forget(identity string) {
	t.mu.Lock()
	delete(t.lastButtons, identity)
	t.mu.Unlock()
}

func toMarkup(kb domain.Keyboard) *InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	markup := &InlineKeyboardMarkup{
		InlineKeyboard: make([][]InlineKeyboardButton, 0, len(kb)),
	}
	for _, row := range kb {
		wire := make([]InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			wire = append(wire, InlineKeyboardButton{Text: btn.Label, CallbackData: btn.Data})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, wire)
	}
	return markup
}
