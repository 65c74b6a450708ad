package domain

// SummaryRow is one short label→value line in a summary table.
// An empty Value is rendered as a fixed placeholder, never a blank.
type SummaryRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummaryTable is an ordered group of rows under a title (e.g. the task
// table or the business-periods table).
type SummaryTable struct {
	Title string       `json:"title"`
	Rows  []SummaryRow `json:"rows"`
}

// Section is one labeled long-form text body. Bodies carry the engine's
// internal emphasis convention (**bold**, double newlines) and are
// re-expressed per transport by the formatter.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Result is the computed output for one session. The order of Sections is
// the section order: it is snapshotted into the session and frozen.
type Result struct {
	Tables   []SummaryTable `json:"tables"`
	Sections []Section      `json:"sections"`
}
