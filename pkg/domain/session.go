package domain

import "time"

// Phase defines the current step of the dialog state machine.
type Phase string

const (
	PhaseAwaitingName             Phase = "awaiting_name"
	PhaseAwaitingBirthDate        Phase = "awaiting_birth_date"
	PhaseAwaitingGender           Phase = "awaiting_gender"
	PhaseAwaitingPartnerName      Phase = "awaiting_partner_name"
	PhaseAwaitingPartnerBirthDate Phase = "awaiting_partner_birth_date"
	PhaseBrowsing                 Phase = "browsing"
)

// Mode selects the flow variant. Single collects name, birth date and
// gender for one person; Pair collects name and birth date for two.
type Mode string

const (
	ModeSingle Mode = "single"
	ModePair   Mode = "pair"
)

// Session is the per-identity conversation state. A session exists only
// between a start event and a terminal event (finish, cancel, or a
// calculation failure). There is no Idle phase object: Idle is the
// absence of a session in the store.
type Session struct {
	Phase   Phase  `json:"phase"`
	Mode    Mode   `json:"mode"`
	Subject Person `json:"subject"`
	Partner Person `json:"partner,omitempty"`

	// Summary and Sections are populated atomically by the single
	// calculation transition. Sections is the frozen section order:
	// never re-sorted or mutated while the session is browsing.
	Summary  []SummaryTable `json:"summary,omitempty"`
	Sections []Section      `json:"sections,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session at the first input-collection phase.
func NewSession(mode Mode, now time.Time) *Session {
	return &Session{
		Phase:     PhaseAwaitingName,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SectionAt resolves a positional index into the frozen section order.
// Out-of-range indices report false; the caller answers with a data-error
// message, not a crash.
func (s *Session) SectionAt(i int) (Section, bool) {
	if i < 0 || i >= len(s.Sections) {
		return Section{}, false
	}
	return s.Sections[i], true
}

// Clone returns a deep copy. Stores copy on save and load so a caller can
// never mutate stored state through a shared pointer.
func (s *Session) Clone() *Session {
	c := *s
	if s.Summary != nil {
		c.Summary = make([]SummaryTable, len(s.Summary))
		for i, t := range s.Summary {
			c.Summary[i] = SummaryTable{Title: t.Title, Rows: append([]SummaryRow(nil), t.Rows...)}
		}
	}
	if s.Sections != nil {
		c.Sections = append([]Section(nil), s.Sections...)
	}
	return &c
}
