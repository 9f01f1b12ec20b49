package oracle

import (
	"fmt"
)

const SystemInstruction = "You are a message classifier. You must respond with EXACTLY one of these categories: Funny, Plain, Helpful, Curious, Super Offensive. No additional text or explanation."

const promptTemplate = `Classify the following message into one of these categories:

Categories:
- Funny: Jokes, memes, humorous content, funny observations
- Plain: Normal conversation, neutral statements, everyday chat
- Helpful: Advice, assistance, informative content, solutions
- Curious: Questions, expressions of wonder, seeking information
- Super Offensive: Extremely abusive content that includes hate speech, serious threats, targeted harassment, or severely inappropriate language. Ignore light sarcasm, jokes, friendly banter, or minor arguments.

Message to classify: "%s"

Respond with ONLY the category name:`

// Builds the per-message classification prompt. The text is embedded as-is.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
