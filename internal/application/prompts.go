package application

import "strings"

const emailSystemPrompt = "You are a writing assistant for a sales team. " +
	"You draft clear, professional business emails. Respond with the email text only, " +
	"no commentary and no surrounding quotes."

const summarySystemPrompt = "You are an assistant that structures sales call transcripts. " +
	"Respond with a single JSON object and nothing else, using exactly these keys: " +
	`"summary" (string, a concise summary of the call), ` +
	`"customer" (string, the customer or company discussed, empty if unknown), ` +
	`"action_items" (array of strings, agreed follow-ups), ` +
	`"sentiment" (string, one of "positive", "neutral", "negative").`

func buildGenerateEmailPrompt(in GenerateEmailInput) string {
	var b strings.Builder
	b.WriteString("Write a business email")
	if in.Recipient != "" {
		b.WriteString(" to " + in.Recipient)
	}
	b.WriteString(".\n")
	if in.Tone != "" {
		b.WriteString("Tone: " + in.Tone + ".\n")
	}
	if in.Language != "" {
		b.WriteString("Language: " + in.Language + ".\n")
	}
	b.WriteString("The email must cover the following points:\n")
	for _, point := range in.KeyPoints {
		b.WriteString("- " + point + "\n")
	}
	return b.String()
}

func buildImproveEmailPrompt(in ImproveEmailInput) string {
	var b strings.Builder
	b.WriteString("Improve the following email draft.\n")
	if in.Instruction != "" {
		b.WriteString("Instruction: " + in.Instruction + ".\n")
	}
	if in.Tone != "" {
		b.WriteString("Tone: " + in.Tone + ".\n")
	}
	if in.Language != "" {
		b.WriteString("Language: " + in.Language + ".\n")
	}
	b.WriteString("Draft:\n")
	b.WriteString(in.Draft)
	return b.String()
}

func buildSummaryPrompt(transcript string) string {
	return "Transcript of the sales call:\n" + transcript
}
