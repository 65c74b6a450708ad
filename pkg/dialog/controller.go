package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mkuleshov/pgdbot/internal/logging"
	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/mkuleshov/pgdbot/pkg/ports"
	"github.com/mkuleshov/pgdbot/pkg/session"
)

// Controller is the dialog state machine. Every inbound event for one
// identity is processed under the session manager's per-key lock, so a
// session's transitions are strictly sequential while distinct
// conversations run in parallel.
type Controller struct {
	sessions  *session.Manager
	calc      ports.Calculator
	transport ports.Transport
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// New creates a Controller over its collaborators.
func New(sessions *session.Manager, calc ports.Calculator, transport ports.Transport, opts ...Option) *Controller {
	c := &Controller{
		sessions:  sessions,
		calc:      calc,
		transport: transport,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleStart begins a fresh session, discarding any prior one for the
// identity.
func (c *Controller) HandleStart(ctx context.Context, identity string, mode domain.Mode) error {
	c.metrics.event("start")
	return c.sessions.WithLock(ctx, identity, func(ctx context.Context) error {
		if _, err := c.sessions.ResetLocked(ctx, identity, mode); err != nil {
			return err
		}

		welcome := msgWelcomeSingle
		if mode == domain.ModePair {
			welcome = msgWelcomePair
		}
		return c.sendText(ctx, identity, welcome)
	})
}

// HandleCancel aborts the conversation from any state.
func (c *Controller) HandleCancel(ctx context.Context, identity string) error {
	c.metrics.event("cancel")
	return c.sessions.WithLock(ctx, identity, func(ctx context.Context) error {
		if err := c.sessions.DeleteLocked(ctx, identity); err != nil {
			return err
		}
		return c.sendText(ctx, identity, msgCancelled)
	})
}

// HandleText processes a free-form text message against the current phase.
func (c *Controller) HandleText(ctx context.Context, identity, text string) error {
	c.metrics.event("text")
	return c.sessions.WithLock(ctx, identity, func(ctx context.Context) error {
		sess, err := c.sessions.LoadLocked(ctx, identity)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.sendText(ctx, identity, msgNoSession)
		}
		if err != nil {
			return err
		}

		text = strings.TrimSpace(text)

		switch sess.Phase {
		case domain.PhaseAwaitingName:
			if text == "" {
				return c.sendText(ctx, identity, msgWelcomeSingle)
			}
			sess.Subject.Name = text
			sess.Phase = domain.PhaseAwaitingBirthDate
			if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
				return err
			}
			return c.sendText(ctx, identity, msgAskBirthDate(text))

		case domain.PhaseAwaitingBirthDate:
			date, err := domain.ParseBirthDate(text)
			if err != nil {
				// Re-enter the same phase; previously collected
				// fields stay untouched.
				c.metrics.errored("validation")
				return c.sendText(ctx, identity, msgBadDate)
			}
			sess.Subject.BirthDate = date

			if sess.Mode == domain.ModePair {
				sess.Phase = domain.PhaseAwaitingPartnerName
				if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
					return err
				}
				return c.sendText(ctx, identity, msgAskPartnerName(sess.Subject.Name))
			}

			sess.Phase = domain.PhaseAwaitingGender
			if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
				return err
			}
			return c.sendButtons(ctx, identity, msgChooseGender, GenderPrompt())

		case domain.PhaseAwaitingPartnerName:
			if text == "" {
				return c.sendText(ctx, identity, msgAskPartnerName(sess.Subject.Name))
			}
			sess.Partner.Name = text
			sess.Phase = domain.PhaseAwaitingPartnerBirthDate
			if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
				return err
			}
			return c.sendText(ctx, identity, msgAskPartnerBirthDate(text))

		case domain.PhaseAwaitingPartnerBirthDate:
			date, err := domain.ParseBirthDate(text)
			if err != nil {
				c.metrics.errored("validation")
				return c.sendText(ctx, identity, msgBadDate)
			}
			sess.Partner.BirthDate = date
			if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
				return err
			}
			if err := c.sendText(ctx, identity, msgComputing()); err != nil {
				return err
			}
			return c.computeAndPresent(ctx, identity, sess)

		case domain.PhaseAwaitingGender:
			return c.sendText(ctx, identity, msgAwaitGenderHint)

		case domain.PhaseBrowsing:
			return c.sendText(ctx, identity, msgBrowsingTextHint)
		}

		c.logger.Warn("text event in unknown phase", "identity", identity, "phase", sess.Phase)
		return nil
	})
}

// HandleAction processes a button press. The payload is parsed strictly
// into the closed Action variant before any state is consulted.
func (c *Controller) HandleAction(ctx context.Context, identity, data string) error {
	c.metrics.event("action")
	return c.sessions.WithLock(ctx, identity, func(ctx context.Context) error {
		action, err := domain.ParseAction(data)
		if err != nil {
			c.metrics.errored("validation")
			c.logger.Warn("rejected action payload", "identity", identity, "data", data, "err", err)
			return c.sendText(ctx, identity, msgUnknownSection)
		}

		sess, err := c.sessions.LoadLocked(ctx, identity)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.sendText(ctx, identity, msgNoSession)
		}
		if err != nil {
			return err
		}

		switch sess.Phase {
		case domain.PhaseAwaitingGender:
			if action.Kind != domain.ActionGender {
				return c.sendText(ctx, identity, msgAwaitGenderHint)
			}
			sess.Subject.Gender = action.Gender
			if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
				return err
			}
			if err := c.editLast(ctx, identity, msgGenderChosen(action.Gender.Label()), nil); err != nil {
				return err
			}
			return c.computeAndPresent(ctx, identity, sess)

		case domain.PhaseBrowsing:
			return c.handleBrowsing(ctx, identity, sess, action)
		}

		// Button presses during free-text phases are ignored with guidance.
		return c.sendText(ctx, identity, msgInputTextHint)
	})
}

// handleBrowsing routes the four browsing actions over the frozen
// section order.
func (c *Controller) handleBrowsing(ctx context.Context, identity string, sess *domain.Session, action domain.Action) error {
	switch action.Kind {
	case domain.ActionSelect:
		sec, ok := sess.SectionAt(action.Index)
		if !ok {
			c.metrics.errored("validation")
			return c.sendText(ctx, identity, msgUnknownSection)
		}

		body, err := RenderSection(sec)
		if err != nil {
			// A formatting failure for one section never kills the
			// session; the user is pointed at the export instead.
			c.metrics.errored("render")
			c.logger.Error("section render failed", "identity", identity, "section", sec.Title, "err", err)
			return c.editLast(ctx, identity, msgSectionUnavailable, SectionView())
		}
		return c.editLast(ctx, identity, body, SectionView())

	case domain.ActionBack:
		return c.editLast(ctx, identity, msgChooseSection, SectionMenu(sess.Sections))

	case domain.ActionExport:
		data, filename := BuildReport(identity, sess)
		if err := c.transport.SendDocument(ctx, identity, data, filename); err != nil {
			c.metrics.errored("transport")
			c.logger.Error("document upload failed", "identity", identity, "err", err)
			return err
		}
		return nil

	case domain.ActionFinish:
		if err := c.sessions.DeleteLocked(ctx, identity); err != nil {
			return err
		}
		return c.editLast(ctx, identity, msgDone, nil)
	}

	return c.sendText(ctx, identity, msgBrowsingTextHint)
}

// computeAndPresent is the single transition that invokes the engine.
// On success it populates summary and sections atomically and moves to
// browsing; on failure the session is cleared.
func (c *Controller) computeAndPresent(ctx context.Context, identity string, sess *domain.Session) error {
	start := time.Now()

	var result *domain.Result
	var err error
	if sess.Mode == domain.ModePair {
		result, err = c.calc.ComputePair(ctx, sess.Subject, sess.Partner)
	} else {
		result, err = c.calc.ComputeSingle(ctx, sess.Subject)
	}
	c.metrics.observeCompute(time.Since(start).Seconds())

	if err == nil && len(result.Sections) == 0 {
		err = domain.ErrCalculation
	}
	if err != nil {
		c.metrics.errored("calculation")
		c.logger.Error("calculation failed", "identity", identity, "mode", sess.Mode, "err", err)
		if derr := c.sessions.DeleteLocked(ctx, identity); derr != nil {
			c.logger.Error("failed to clear session after calculation error", "identity", identity, "err", derr)
		}
		return c.sendText(ctx, identity, msgComputeFailed)
	}

	sess.Summary = result.Tables
	sess.Sections = result.Sections
	sess.Phase = domain.PhaseBrowsing
	if err := c.sessions.SaveLocked(ctx, identity, sess); err != nil {
		return err
	}

	var partner *domain.Person
	if sess.Mode == domain.ModePair {
		partner = &sess.Partner
	}
	if err := c.sendText(ctx, identity, RenderSummary(sess.Subject, partner, sess.Summary)); err != nil {
		return err
	}
	return c.sendButtons(ctx, identity, msgChooseSection, SectionMenu(sess.Sections))
}

func (c *Controller) sendText(ctx context.Context, identity, body string) error {
	if err := c.transport.SendText(ctx, identity, body); err != nil {
		c.metrics.errored("transport")
		c.logger.Error("send failed", "identity", identity, "err", err)
		return err
	}
	return nil
}

func (c *Controller) sendButtons(ctx context.Context, identity, body string, kb domain.Keyboard) error {
	if err := c.transport.SendButtons(ctx, identity, body, kb); err != nil {
		c.metrics.errored("transport")
		c.logger.Error("send buttons failed", "identity", identity, "err", err)
		return err
	}
	return nil
}

func (c *Controller) editLast(ctx context.Context, identity, body string, kb domain.Keyboard) error {
	if err := c.transport.EditLast(ctx, identity, body, kb); err != nil {
		c.metrics.errored("transport")
		c.logger.Error("edit failed", "identity", identity, "err", err)
		return err
	}
	return nil
}
