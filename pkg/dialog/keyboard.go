package dialog

import "github.com/mkuleshov/pgdbot/pkg/domain"

// Button payload length limits on chat transports are tight (Telegram
// allows 64 bytes), and section labels are arbitrary engine output, so
// selection buttons always carry a positional index into the frozen
// section order instead of the raw label.

// SectionMenu builds the result menu: one row per section, in section
// order, followed by the fixed control tail. Pure function of its input:
// the same sections always produce a byte-identical grid, which is what
// makes "back to menu" idempotent.
func SectionMenu(sections []domain.Section) domain.Keyboard {
	kb := make(domain.Keyboard, 0, len(sections)+1)
	for i, sec := range sections {
		kb = append(kb, []domain.Button{{
			Label: sec.Title,
			Data:  domain.Action{Kind: domain.ActionSelect, Index: i}.Encode(),
		}})
	}
	kb = append(kb, []domain.Button{
		{Label: "📄 Export", Data: domain.Action{Kind: domain.ActionExport}.Encode()},
		{Label: "✅ Finish", Data: domain.Action{Kind: domain.ActionFinish}.Encode()},
	})
	return kb
}

// SectionView is the keyboard shown under a single section body.
func SectionView() domain.Keyboard {
	return domain.Keyboard{
		{{Label: "⬅️ Back to list", Data: domain.Action{Kind: domain.ActionBack}.Encode()}},
	}
}

// GenderPrompt is the two-choice keyboard for the gender step.
func GenderPrompt() domain.Keyboard {
	return domain.Keyboard{
		{
			{Label: "Female", Data: domain.Action{Kind: domain.ActionGender, Gender: domain.GenderFemale}.Encode()},
			{Label: "Male", Data: domain.Action{Kind: domain.ActionGender, Gender: domain.GenderMale}.Encode()},
		},
	}
}
