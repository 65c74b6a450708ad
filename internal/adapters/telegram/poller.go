package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mkuleshov/pgdbot/internal/logging"
	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// Handler is the dialog surface the poller dispatches into.
type Handler interface {
	HandleStart(ctx context.Context, identity string, mode domain.Mode) error
	HandleText(ctx context.Context, identity, text string) error
	HandleAction(ctx context.Context, identity, data string) error
	HandleCancel(ctx context.Context, identity string) error
}

// Poller drives the getUpdates long-poll loop and dispatches each update
// to the dialog. Updates for the same chat are handled in arrival order;
// distinct chats are handled concurrently.
type Poller struct {
	client    *Client
	handler   Handler
	transport *Transport
	timeout   time.Duration
	logger    *slog.Logger
}

// PollerOption configures the Poller.
type PollerOption func(*Poller)

// WithPollerLogger configures a logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a Poller. transport may be nil; when set, finished
// conversations have their tracked menu message dropped.
func NewPoller(client *Client, handler Handler, transport *Transport, pollTimeout time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{
		client:    client,
		handler:   handler,
		transport: transport,
		timeout:   pollTimeout,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. Poll failures back off exponentially
// from two to fifteen seconds and never terminate the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "timeout", p.timeout)

	var wg sync.WaitGroup
	defer wg.Wait()

	var offset int64
	backoff := 2 * time.Second

	// Tail of the in-flight dispatch chain per chat. Each update waits
	// for the previous update of its chat before running, so a chat's
	// events keep arrival order even across getUpdates batches.
	tails := make(map[int64]chan struct{})

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("poller stopping")
			return nil
		}

		updates, next, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poller stopping")
				return nil
			}
			p.logger.Warn("getUpdates failed", "err", err, "backoff", backoff)
			if !sleepOrDone(ctx, backoff) {
				return nil
			}
			if backoff < 15*time.Second {
				backoff *= 2
				if backoff > 15*time.Second {
					backoff = 15 * time.Second
				}
			}
			continue
		}
		backoff = 2 * time.Second
		offset = next

		for id, ch := range tails {
			select {
			case <-ch:
				delete(tails, id)
			default:
			}
		}

		for _, upd := range updates {
			upd := upd
			key := chatKey(upd)
			prev := tails[key]
			done := make(chan struct{})
			tails[key] = done
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer close(done)
				if prev != nil {
					<-prev
				}
				p.Dispatch(ctx, upd)
			}()
		}
	}
}

// Dispatch routes one update into the dialog. Exported so the webhook
// delivery path can share the exact routing rules.
func (p *Poller) Dispatch(ctx context.Context, upd Update) {
	switch {
	case upd.Callback != nil:
		p.dispatchCallback(ctx, upd.Callback)
	case upd.Message != nil:
		p.dispatchMessage(ctx, upd.Message)
	}
}

func (p *Poller) dispatchMessage(ctx context.Context, msg *Message) {
	if msg.Chat.ID == 0 {
		return
	}
	identity := strconv.FormatInt(msg.Chat.ID, 10)
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	var err error
	switch command(text) {
	case "/start":
		p.forget(identity)
		err = p.handler.HandleStart(ctx, identity, domain.ModeSingle)
	case "/pair":
		p.forget(identity)
		err = p.handler.HandleStart(ctx, identity, domain.ModePair)
	case "/cancel":
		err = p.handler.HandleCancel(ctx, identity)
		p.forget(identity)
	default:
		err = p.handler.HandleText(ctx, identity, text)
	}
	if err != nil {
		p.logger.Error("message handling failed", "identity", identity, "err", err)
	}
}

func (p *Poller) dispatchCallback(ctx context.Context, cb *CallbackQuery) {
	// Acknowledge first; a slow dialog step must not leave the client
	// spinner hanging.
	if err := p.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		p.logger.Warn("answerCallbackQuery failed", "err", err)
	}

	if cb.Message == nil || cb.Message.Chat.ID == 0 {
		return
	}
	identity := strconv.FormatInt(cb.Message.Chat.ID, 10)

	if err := p.handler.HandleAction(ctx, identity, cb.Data); err != nil {
		p.logger.Error("action handling failed", "identity", identity, "err", err)
	}
}

func (p *Poller) forget(identity string) {
	if p.transport != nil {
		p.transport.Forget(identity)
	}
}

// chatKey returns the chat an update belongs to, or zero when it has none.
func chatKey(upd Update) int64 {
	switch {
	case upd.Callback != nil && upd.Callback.Message != nil:
		return upd.Callback.Message.Chat.ID
	case upd.Message != nil:
		return upd.Message.Chat.ID
	}
	return 0
}

// command extracts the leading bot command, normalizing the @botname
// suffix used in group chats.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return cmd
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
