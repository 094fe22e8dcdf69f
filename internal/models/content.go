package models

import (
	"encoding/json"
	"time"
)

// ContentKind identifies a class of generated artifact. The string value is
// also the key prefix the record is stored under.
type ContentKind string

const (
	KindNote         ContentKind = "note"
	KindFlashcardSet ContentKind = "flashcards"
	KindRoutine      ContentKind = "routine"
	KindQuiz         ContentKind = "quiz"
	KindChat         ContentKind = "chat"
)

// Note is a generated study-notes record.
type Note struct {
	UserID       string    `json:"userId"`
	Topic        string    `json:"topic"`
	Content      string    `json:"content"`
	OriginalText string    `json:"originalText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Flashcard is a single question/answer pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FlashcardSet is a generated set of flashcards with its source text.
type FlashcardSet struct {
	UserID     string      `json:"userId"`
	Flashcards []Flashcard `json:"flashcards"`
	SourceText string      `json:"sourceText"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Routine is a generated study routine together with the inputs it was built
// from. ExamDates is kept as raw JSON; its shape is owned by the client.
type Routine struct {
	UserID      string          `json:"userId"`
	Subjects    []string        `json:"subjects"`
	ExamDates   json.RawMessage `json:"examDates"`
	StudyHours  float64         `json:"studyHours"`
	Preferences string          `json:"preferences,omitempty"`
	Routine     string          `json:"routine"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// QuizQuestion is a single multiple-choice question. CorrectAnswer indexes
// into Options.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is a generated quiz record.
type Quiz struct {
	UserID     string         `json:"userId"`
	Topic      string         `json:"topic"`
	Difficulty string         `json:"difficulty"`
	Questions  []QuizQuestion `json:"questions"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ChatExchange is a single tutor chat request/response pair.
type ChatExchange struct {
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}
