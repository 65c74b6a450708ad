package domain

import (
	"strconv"
	"strings"
)

// ActionKind enumerates the closed set of button actions. The controller
// matches exhaustively over this variant instead of string-prefix matching
// on raw payloads.
type ActionKind int

const (
	ActionSelect ActionKind = iota // show one section; Index is set
	ActionBack                     // rebuild the menu from the frozen order
	ActionExport                   // emit the full document
	ActionFinish                   // terminate the session
	ActionGender                   // gender choice during input collection; Gender is set
)

// Fixed control tokens plus the select/gender payload prefixes. These are
// the only strings ever embedded in a button payload.
const (
	tokenBack    = "back"
	tokenExport  = "export"
	tokenFinish  = "finish"
	selectPrefix = "select:"
	genderPrefix = "gender:"
)

// Action is the parsed form of a button payload.
type Action struct {
	Kind   ActionKind
	Index  int
	Gender Gender
}

// ParseAction strictly parses a transport payload into an Action.
// Unknown payloads are a ValidationError, never a crash.
func ParseAction(data string) (Action, error) {
	switch data {
	case tokenBack:
		return Action{Kind: ActionBack}, nil
	case tokenExport:
		return Action{Kind: ActionExport}, nil
	case tokenFinish:
		return Action{Kind: ActionFinish}, nil
	}

	if raw, ok := strings.CutPrefix(data, selectPrefix); ok {
		i, err := strconv.Atoi(raw)
		if err != nil || i < 0 {
			return Action{}, &ValidationError{Field: "action", Input: data, Reason: "malformed section index"}
		}
		return Action{Kind: ActionSelect, Index: i}, nil
	}

	if raw, ok := strings.CutPrefix(data, genderPrefix); ok {
		g, err := ParseGender(raw)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionGender, Gender: g}, nil
	}

	return Action{}, &ValidationError{Field: "action", Input: data, Reason: "unknown action token"}
}

// Encode renders the Action back into its payload form. Encode and
// ParseAction are exact inverses, which keeps the payload format from
// drifting between the keyboard builder and the controller.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionBack:
		return tokenBack
	case ActionExport:
		return tokenExport
	case ActionFinish:
		return tokenFinish
	case ActionSelect:
		return selectPrefix + strconv.Itoa(a.Index)
	case ActionGender:
		return genderPrefix + string(a.Gender)
	}
	return ""
}

// Button is one selectable item: display text plus an opaque payload.
type Button struct {
	Label string
	Data  string
}

// Keyboard is a grid of buttons, one slice per row.
type Keyboard [][]Button
