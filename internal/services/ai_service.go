package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyai_go_backend/internal/models"

	"github.com/google/generative-ai-go/genai"
)

var (
	// ErrUpstreamUnavailable wraps provider errors and deadline expiry; the
	// caller may retry later.
	ErrUpstreamUnavailable = errors.New("AI service temporarily unavailable")

	// ErrMalformedResponse indicates the provider answered but the reply could
	// not be used.
	ErrMalformedResponse = errors.New("malformed response from AI provider")
)

// AIProvider is the contract for the external AI service: single request,
// synchronous reply, no streaming.
type AIProvider interface {
	Chat(ctx context.Context, message, language string) (string, error)
	GenerateNotes(ctx context.Context, text, topic string) (string, error)
	GenerateFlashcards(ctx context.Context, text string, count int) ([]models.Flashcard, error)
	GenerateRoutine(ctx context.Context, subjects []string, examDates json.RawMessage, studyHours float64, preferences string) (string, error)
	GenerateQuiz(ctx context.Context, topic, difficulty string, questionCount int) ([]models.QuizQuestion, error)
}

// GeminiService implements AIProvider on the Gemini API. Every call is bounded
// by a fixed deadline; there are no retries.
type GeminiService struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

func NewGeminiService(client *genai.Client, modelName string, timeout time.Duration) *GeminiService {
	return &GeminiService{
		client:    client,
		modelName: modelName,
		timeout:   timeout,
	}
}

func (s *GeminiService) generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrMalformedResponse)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: unexpected part type", ErrMalformedResponse)
	}
	return string(text), nil
}

func (s *GeminiService) Chat(ctx context.Context, message, language string) (string, error) {
	systemPrompt := "You are a helpful AI tutor for students. Provide clear explanations, step-by-step solutions for math/physics problems, and help with homework. Keep your responses educational and encouraging."
	if language == "bengali" {
		systemPrompt = "You are a helpful AI tutor for students. Respond in Bengali. Provide clear explanations, step-by-step solutions for math/physics problems, and help with homework. Keep your responses educational and encouraging."
	}
	return s.generate(ctx, systemPrompt, message, 0.7, 1000)
}

func (s *GeminiService) GenerateNotes(ctx context.Context, text, topic string) (string, error) {
	systemPrompt := "You are an expert note-taking assistant. Create concise, well-structured study notes from the provided text. Use bullet points, headings, and highlight key concepts. Make it easy to understand for students."
	if topic == "" {
		topic = "General Study Notes"
	}
	userPrompt := fmt.Sprintf("Create study notes for the topic %q from this text:\n\n%s", topic, text)
	return s.generate(ctx, systemPrompt, userPrompt, 0.5, 1500)
}

func (s *GeminiService) GenerateFlashcards(ctx context.Context, text string, count int) ([]models.Flashcard, error) {
	systemPrompt := fmt.Sprintf("Create exactly %d flashcards from the provided text. Return ONLY a JSON array with objects containing 'question' and 'answer' fields. Make questions clear and answers concise but complete.", count)
	userPrompt := fmt.Sprintf("Create %d flashcards from this text:\n\n%s", count, text)

	content, err := s.generate(ctx, systemPrompt, userPrompt, 0.5, 1000)
	if err != nil {
		return nil, err
	}

	var flashcards []models.Flashcard
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &flashcards); err != nil {
		// The model did not return a parseable array; hand the raw text back
		// as a single card rather than failing the whole request.
		return []models.Flashcard{{Question: "Generated Content", Answer: content}}, nil
	}
	return flashcards, nil
}

func (s *GeminiService) GenerateRoutine(ctx context.Context, subjects []string, examDates json.RawMessage, studyHours float64, preferences string) (string, error) {
	systemPrompt := "You are an expert study planner. Create detailed, realistic study routines that help students manage their time effectively and prepare for exams systematically."
	if preferences == "" {
		preferences = "None specified"
	}
	userPrompt := fmt.Sprintf(`Create a personalized study routine for a student with the following:
- Subjects: %s
- Exam dates: %s
- Available study hours per day: %g
- Preferences: %s

Provide a detailed weekly schedule with specific time allocations for each subject, considering exam priorities and optimal learning patterns. Format as a structured plan.`,
		strings.Join(subjects, ", "), string(examDates), studyHours, preferences)

	return s.generate(ctx, systemPrompt, userPrompt, 0.6, 1500)
}

func (s *GeminiService) GenerateQuiz(ctx context.Context, topic, difficulty string, questionCount int) ([]models.QuizQuestion, error) {
	systemPrompt := fmt.Sprintf("Create %d multiple choice questions about %s at %s difficulty level. Return ONLY a JSON array with objects containing: 'question', 'options' (array of 4 choices), 'correctAnswer' (index 0-3), and 'explanation'. Make questions educational and challenging.", questionCount, topic, difficulty)
	userPrompt := fmt.Sprintf("Generate %d %s level MCQ questions about: %s", questionCount, difficulty, topic)

	content, err := s.generate(ctx, systemPrompt, userPrompt, 0.7, 1500)
	if err != nil {
		return nil, err
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return questions, nil
}

// stripCodeFences removes a surrounding markdown code fence, which Gemini
// tends to add around JSON output.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
