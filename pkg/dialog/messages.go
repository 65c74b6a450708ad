package dialog

import "fmt"

// User-facing message bodies. Everything here is final MarkdownV2: static
// literals carry their own escapes, user-supplied fragments go through
// EscapeMarkdownV2 at the call site.
const (
	msgWelcomeSingle = "👋 Hello\\! I am a personality diagnostics bot\\.\n\nTo begin, please enter your name\\."
	msgWelcomePair   = "👋 Hello\\! Let's run a compatibility analysis for two people\\.\n\nPlease enter the first person's name\\."

	msgBadDate = "❌ *Wrong date format*\\.\n\nPlease enter the date strictly as *DD\\.MM\\.YYYY* \\(for example, 09\\.10\\.1988\\)\\."

	msgChooseGender = "Thank you\\! Please choose the gender:"

	msgComputeFailed = "❌ An internal error occurred\\. Please try again later\\."

	msgChooseSection = "Choose a topic to read its full description:"

	msgSectionUnavailable = "❌ This topic could not be rendered\\. Use *Export* to get the full text\\."

	msgUnknownSection = "❌ Unknown topic\\. Use the buttons below the list\\."

	msgDone      = "✅ Analysis finished\\. Send /start to begin a new one\\."
	msgCancelled = "Cancelled\\. Send /start to begin again\\."

	msgNoSession = "There is no active analysis\\. Send /start to begin\\."

	msgAwaitGenderHint  = "Please use the buttons above to choose the gender\\."
	msgInputTextHint    = "Please answer with a text message\\."
	msgBrowsingTextHint = "Use the buttons to browse the results, or send /cancel to finish\\."
)

func msgAskBirthDate(name string) string {
	return fmt.Sprintf("Nice to meet you, %s\\! Now enter the birth date as *DD\\.MM\\.YYYY*\\.", EscapeMarkdownV2(name))
}

func msgAskPartnerName(name string) string {
	return fmt.Sprintf("Got it, %s\\! Now enter the second person's name\\.", EscapeMarkdownV2(name))
}

func msgAskPartnerBirthDate(name string) string {
	return fmt.Sprintf("Now enter %s's birth date as *DD\\.MM\\.YYYY*\\.", EscapeMarkdownV2(name))
}

func msgGenderChosen(label string) string {
	return fmt.Sprintf("You chose: *%s*\\.\n\n⏳ Computing\\.\\.\\.", EscapeMarkdownV2(label))
}

func msgComputing() string {
	return "⏳ Computing\\.\\.\\."
}
