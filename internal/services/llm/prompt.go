package llm

// SystemPrompt is the fixed instruction sent with every correction request.
const SystemPrompt = "You are a helpful assistant that corrects grammar and removes filler words."

const userPromptPrefix = "Please correct the following text, removing grammatical mistakes and filler words: "

// UserPrompt builds the user message for a transcript.
func UserPrompt(text string) string {
	return userPromptPrefix + text
}
