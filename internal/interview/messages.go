package interview

import "fmt"

const (
	MsgWelcome = "Welcome! I'm your hiring assistant and I'll help with the initial screening process. Could you please tell me your full name?"

	MsgAskPhone      = "Thank you! Now, could you share your phone number?"
	MsgInvalidEmail  = "That doesn't appear to be a valid email address. Could you please provide a valid email?"
	MsgAskExperience = "Great! How many years of professional experience do you have in the tech industry?"
	MsgInvalidPhone  = "That doesn't appear to be a valid phone number. Please provide a valid phone number with 10-15 digits."
	MsgAskPosition   = "Thank you for sharing your experience. What position(s) are you interested in applying for?"
	MsgAskLocation   = "Got it! Could you please tell me your current location or the location where you're seeking employment?"
	MsgAskTechStack  = "Thank you! Now, please list the technologies you're proficient in (programming languages, frameworks, databases, tools, etc.). Separate each with a comma."

	MsgNoTechStack = "I notice you didn't specify any technologies. Unfortunately, we need this information to proceed. Would you like to try again and list your technical skills?"

	MsgAssessmentComplete = "Thank you for answering all the technical questions! Your responses have been recorded. A recruiter will contact you soon if your profile matches our open positions. Is there anything else you'd like to add before we conclude?"

	MsgGoodbye = "Thank you for your time! Your information has been recorded. A recruiter will contact you soon if your profile matches our open positions. Have a great day!"
	MsgClosed  = "Thank you for your time! Your information has been recorded. Feel free to reach out if you have any questions about the process. Have a great day!"

	// MsgUnavailable is returned with ai.ErrOracleUnavailable. The turn is not applied and may be retried.
	MsgUnavailable = "Sorry, the screening assistant is temporarily unavailable. Your answer was not recorded, please try again in a moment."
)

func msgAskEmail(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! Could you please provide your email address so we can contact you?", name)
}

func msgFirstQuestion(tech, question string) string {
	return fmt.Sprintf("Great! Let's assess your knowledge of %s. %s", tech, question)
}

func msgNextQuestion(question string) string {
	return "Thank you for your response. " + question
}

func msgNextTech(tech, question string) string {
	return fmt.Sprintf("Now, let's talk about your experience with %s. %s", tech, question)
}
