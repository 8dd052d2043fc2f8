package dialog

import "fmt"

const (
	followupQuestion     = "How else can I help? You can say things like 'Check loan status' or 'What is my balance and due date?'"
	verifyPrompt         = "Before we continue, please verify your identity. What's your user PIN?"
	pinPrompt            = "What's your user PIN?"
	pinMismatchMessage   = "The pin did not match our records, please try again."
	lockedOutMessage     = "Unable to verify your identity. "
	pinVerifiedMessage   = "Thank you, we have verified your PIN. "
	confirmUserMessage   = "Before we continue, please confirm the User Name attached to your profile. "
	fallbackMessage      = "Hmm, that did not seem to work. " + followupQuestion
	goodbyeMessage       = "Thank you. Good bye."
	howElseMessage       = "\n\nHow else may I help you? "
	actionsCardTitle     = "How can I help?"
	accountTypesSubTitle = "Account Types"
)

func noAccountsMessage(userName string) string {
	return fmt.Sprintf("Our records indicate there are no Accounts belonging to %s. What other User Names can we try? ", userName)
}

func invalidDateMessage(date string) string {
	return fmt.Sprintf("The date you specified, %s, is not valid. Please specify an exact start date no earlier than today.", date)
}

func invalidWeekCountMessage(weeks string) string {
	return fmt.Sprintf("The number of weeks specified, %s, before your next scheduled payment is not valid. Please specify an integer week(s) within the range: %d to %d.", weeks, minWeekCount, maxWeekCount)
}

func verifiedGreeting() string {
	return pinVerifiedMessage + "How can I help? You can say things like 'Check loan status' or 'What is my balance and due date?' "
}
