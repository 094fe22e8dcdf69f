package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"studyai_go_backend/internal/auth"
	apperrors "studyai_go_backend/internal/errors"
	"studyai_go_backend/internal/models"
	"studyai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// consumeQuota runs the quota check for the authenticated user. It writes the
// error response itself when the call is not allowed to proceed. Quota is
// consumed before the provider is contacted, so an upstream failure still
// costs the user a quota unit.
func consumeQuota(c *gin.Context, quota services.QuotaLedger) (services.QuotaDecision, bool) {
	userID := auth.UserIDFromContext(c)
	decision, err := quota.CheckAndConsume(c.Request.Context(), userID, services.Today())
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			apperrors.HandleError(c, apperrors.New404Error("User profile not found"))
		} else {
			apperrors.HandleError(c, apperrors.New500Error(err))
		}
		return decision, false
	}
	if !decision.Allowed {
		apperrors.HandleError(c, apperrors.New429Error("Daily API limit reached. Please upgrade to premium for unlimited usage."))
		return decision, false
	}
	return decision, true
}

// handleAIError maps provider failures onto the error taxonomy.
func handleAIError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrUpstreamUnavailable) {
		apperrors.HandleError(c, apperrors.New503Error("AI service temporarily unavailable", err))
		return
	}
	apperrors.HandleError(c, apperrors.New500Error(err))
}

func chatHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Message  string `json:"message"`
			Language string `json:"language"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.Message == "" {
			apperrors.HandleError(c, apperrors.New400Error("Message is required"))
			return
		}
		if request.Language == "" {
			request.Language = "english"
		}

		decision, ok := consumeQuota(c, deps.Quota)
		if !ok {
			return
		}

		response, err := deps.AI.Chat(c.Request.Context(), request.Message, request.Language)
		if err != nil {
			handleAIError(c, err)
			return
		}

		userID := auth.UserIDFromContext(c)
		_, err = deps.Content.Store(c.Request.Context(), models.KindChat, userID, models.ChatExchange{
			UserID:    userID,
			Message:   request.Message,
			Response:  response,
			Language:  request.Language,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"response":       response,
			"remainingCalls": decision.Remaining,
		})
	}
}

func generateNotesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Text  string `json:"text"`
			Topic string `json:"topic"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.Text == "" {
			apperrors.HandleError(c, apperrors.New400Error("Text content is required"))
			return
		}

		decision, ok := consumeQuota(c, deps.Quota)
		if !ok {
			return
		}

		notes, err := deps.AI.GenerateNotes(c.Request.Context(), request.Text, request.Topic)
		if err != nil {
			handleAIError(c, err)
			return
		}

		topic := request.Topic
		if topic == "" {
			topic = "Untitled Notes"
		}
		userID := auth.UserIDFromContext(c)
		noteID, err := deps.Content.Store(c.Request.Context(), models.KindNote, userID, models.Note{
			UserID:       userID,
			Topic:        topic,
			Content:      notes,
			OriginalText: request.Text,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"notes":          notes,
			"noteId":         noteID,
			"remainingCalls": decision.Remaining,
		})
	}
}

func generateFlashcardsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Text  string `json:"text"`
			Count int    `json:"count"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.Text == "" {
			apperrors.HandleError(c, apperrors.New400Error("Text content is required"))
			return
		}
		if request.Count <= 0 {
			request.Count = 5
		}

		decision, ok := consumeQuota(c, deps.Quota)
		if !ok {
			return
		}

		flashcards, err := deps.AI.GenerateFlashcards(c.Request.Context(), request.Text, request.Count)
		if err != nil {
			handleAIError(c, err)
			return
		}

		userID := auth.UserIDFromContext(c)
		flashcardSetID, err := deps.Content.Store(c.Request.Context(), models.KindFlashcardSet, userID, models.FlashcardSet{
			UserID:     userID,
			Flashcards: flashcards,
			SourceText: request.Text,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"flashcards":     flashcards,
			"flashcardSetId": flashcardSetID,
			"remainingCalls": decision.Remaining,
		})
	}
}

func generateRoutineHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Subjects    []string        `json:"subjects"`
			ExamDates   json.RawMessage `json:"examDates"`
			StudyHours  float64         `json:"studyHours"`
			Preferences string          `json:"preferences"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || len(request.Subjects) == 0 || len(request.ExamDates) == 0 || request.StudyHours <= 0 {
			apperrors.HandleError(c, apperrors.New400Error("Subjects, exam dates, and study hours are required"))
			return
		}

		decision, ok := consumeQuota(c, deps.Quota)
		if !ok {
			return
		}

		routine, err := deps.AI.GenerateRoutine(c.Request.Context(), request.Subjects, request.ExamDates, request.StudyHours, request.Preferences)
		if err != nil {
			handleAIError(c, err)
			return
		}

		userID := auth.UserIDFromContext(c)
		routineID, err := deps.Content.Store(c.Request.Context(), models.KindRoutine, userID, models.Routine{
			UserID:      userID,
			Subjects:    request.Subjects,
			ExamDates:   request.ExamDates,
			StudyHours:  request.StudyHours,
			Preferences: request.Preferences,
			Routine:     routine,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"routine":        routine,
			"routineId":      routineID,
			"remainingCalls": decision.Remaining,
		})
	}
}

func generateQuizHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Topic         string `json:"topic"`
			Difficulty    string `json:"difficulty"`
			QuestionCount int    `json:"questionCount"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.Topic == "" {
			apperrors.HandleError(c, apperrors.New400Error("Topic is required"))
			return
		}
		if request.Difficulty == "" {
			request.Difficulty = "medium"
		}
		if request.QuestionCount <= 0 {
			request.QuestionCount = 5
		}

		decision, ok := consumeQuota(c, deps.Quota)
		if !ok {
			return
		}

		questions, err := deps.AI.GenerateQuiz(c.Request.Context(), request.Topic, request.Difficulty, request.QuestionCount)
		if err != nil {
			if errors.Is(err, services.ErrMalformedResponse) {
				apperrors.HandleError(c, apperrors.New500Error(err))
				return
			}
			handleAIError(c, err)
			return
		}

		userID := auth.UserIDFromContext(c)
		quizID, err := deps.Content.Store(c.Request.Context(), models.KindQuiz, userID, models.Quiz{
			UserID:     userID,
			Topic:      request.Topic,
			Difficulty: request.Difficulty,
			Questions:  questions,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"questions":      questions,
			"quizId":         quizID,
			"remainingCalls": decision.Remaining,
		})
	}
}
