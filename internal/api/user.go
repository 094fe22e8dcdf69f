package api

import (
	"errors"
	"net/http"

	"studyai_go_backend/internal/auth"
	apperrors "studyai_go_backend/internal/errors"
	"studyai_go_backend/internal/models"
	"studyai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func getUserContentHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserIDFromContext(c)
		ctx := c.Request.Context()

		notes, err := deps.Content.ListByUser(ctx, models.KindNote, userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		flashcards, err := deps.Content.ListByUser(ctx, models.KindFlashcardSet, userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		routines, err := deps.Content.ListByUser(ctx, models.KindRoutine, userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		quizzes, err := deps.Content.ListByUser(ctx, models.KindQuiz, userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"notes":      notes,
			"flashcards": flashcards,
			"routines":   routines,
			"quizzes":    quizzes,
		})
	}
}

func getUserProfileHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := deps.Profiles.GetProfile(c.Request.Context(), auth.UserIDFromContext(c))
		if err != nil {
			if errors.Is(err, services.ErrProfileNotFound) {
				apperrors.HandleError(c, apperrors.New404Error("User profile not found"))
				return
			}
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func updateSubscriptionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Subscription string `json:"subscription"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid subscription type"))
			return
		}

		_, err := deps.Subscriptions.SetSubscription(c.Request.Context(), auth.UserIDFromContext(c), request.Subscription)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidSubscription):
				apperrors.HandleError(c, apperrors.New400Error("Invalid subscription type"))
			case errors.Is(err, services.ErrProfileNotFound):
				apperrors.HandleError(c, apperrors.New404Error("User profile not found"))
			default:
				apperrors.HandleError(c, apperrors.New500Error(err))
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Subscription updated successfully",
			"subscription": request.Subscription,
		})
	}
}
