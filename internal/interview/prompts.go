package interview

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

//go:embed prompts/interviewer.md
var interviewerTemplate string

//go:embed prompts/evaluator.md
var evaluatorPersona string

const (
	startDirective = "Let's start the interview."

	questionsPrompt = "As a senior interviewer, generate 5 technical questions for a %s position at %s difficulty. " +
		"Return ONLY the questions as a list of quoted strings (e.g., ['Q1', 'Q2', ...])."

	replyPrompt = "Internal Evaluation: %s\n\nCandidate said: %s"

	summaryPrompt = "The interview is over. Evaluator, please provide a final structured summary of the candidate's " +
		"performance including strengths, weaknesses, and a technical score (1-100)."
)

// Fixed replies used when the generative backend fails or is not consulted.
const (
	greetingFallback = "Hello %s, welcome to your technical interview. I'm Sam. Let's get started. " +
		"To begin, could you tell me a bit about your experience with %s?"
	probeFallback   = "That's an interesting point. Could you elaborate more on the technical trade-offs you considered in that scenario?"
	summaryFallback = "Technical evaluation completed. Feedback will be generated shortly."

	ClosingMessage  = "Thank you for your time. I've gathered enough information to provide feedback. Feel free to check the results."
	AlreadyFinished = "Interview already finished."
	EndedMessage    = "Interview completed successfully."
)

var fallbackQuestions = []string{
	"Can you walk me through your technical background?",
	"How do you handle complex problem solving?",
	"Explain a challenging technical project you worked on.",
	"What are your preferred tools and why?",
	"How do you stay updated with technology?",
}

// FallbackQuestions returns the question list used when generation fails.
func FallbackQuestions() []string {
	return append([]string(nil), fallbackQuestions...)
}

// interviewerPersona is rebuilt from the snapshot on every call.
func interviewerPersona(s *Session) string {
	topics := make([]string, 0, len(s.Questions))
	for _, q := range s.Questions {
		topics = append(topics, "- "+q)
	}

	total := max(1, len(s.Questions))

	replacer := strings.NewReplacer(
		"{{DIFFICULTY}}", s.Difficulty,
		"{{ROLE}}", orDefault(s.Role, "Technical"),
		"{{QUESTIONS}}", strings.Join(topics, "\n"),
		"{{CANDIDATE}}", orDefault(s.CandidateName, "Candidate"),
		"{{QUESTION_NUMBER}}", strconv.Itoa(s.CurrentQuestionIndex+1),
		"{{QUESTION_TOTAL}}", strconv.Itoa(total),
	)
	return replacer.Replace(interviewerTemplate)
}

func questionsMessage(s *Session) string {
	return fmt.Sprintf(questionsPrompt, s.Role, s.Difficulty)
}

func greeting(s *Session) string {
	return fmt.Sprintf(greetingFallback, s.CandidateName, orDefault(s.Role, "technology"))
}

func replyMessage(assessment, input string) string {
	return fmt.Sprintf(replyPrompt, assessment, input)
}

func summaryMessage(s *Session) string {
	var b strings.Builder
	b.WriteString(summaryPrompt)
	b.WriteString("\n\nTranscript:\n")
	for _, t := range s.Transcript {
		fmt.Fprintf(&b, "- %s: %s\n", t.Speaker, t.Content)
	}
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
