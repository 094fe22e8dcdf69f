package auth

import (
	"errors"
	"net/http"
	"strings"

	"studyai_go_backend/internal/services"

	apperrors "studyai_go_backend/internal/errors"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(rg *gin.RouterGroup, provider IdentityProvider, profileService *services.ProfileService) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", registerHandler(provider, profileService))
		authGroup.POST("/login", loginHandler(provider))
		authGroup.GET("/user", AuthMiddleware(provider), getUser(profileService))
	}
}

// AuthMiddleware resolves the bearer token to a user identity and stores it
// in the gin context. It runs before any handler logic on protected routes.
func AuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - No token provided"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - No token provided"})
			c.Abort()
			return
		}

		identity, err := provider.VerifyToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid token"})
			c.Abort()
			return
		}

		c.Set("userId", identity.UserID)
		c.Set("userEmail", identity.Email)
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user's id, or "" when the
// middleware has not run.
func UserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get("userId"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func registerHandler(provider IdentityProvider, profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid request body"))
			return
		}
		if request.Email == "" || request.Password == "" || request.Name == "" {
			apperrors.HandleError(c, apperrors.New400Error("Missing required fields: email, password, name"))
			return
		}

		identity, err := provider.CreateUser(c.Request.Context(), request.Email, request.Password, request.Name)
		if err != nil {
			if errors.Is(err, ErrUserAlreadyExists) {
				apperrors.HandleError(c, apperrors.New400Error("Registration failed: "+err.Error()))
				return
			}
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		profile, err := profileService.CreateProfile(c.Request.Context(), identity.UserID, identity.Email, request.Name)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "User registered successfully",
			"user": gin.H{
				"id":    profile.ID,
				"email": profile.Email,
				"name":  profile.Name,
			},
		})
	}
}

func loginHandler(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		if err := c.ShouldBindJSON(&request); err != nil || request.Email == "" || request.Password == "" {
			apperrors.HandleError(c, apperrors.New400Error("Missing required fields: email, password"))
			return
		}

		identity, err := provider.VerifyCredentials(c.Request.Context(), request.Email, request.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				apperrors.HandleError(c, apperrors.New401Error("Invalid email or password"))
				return
			}
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		accessToken, err := provider.IssueToken(identity)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"accessToken": accessToken,
			"user": gin.H{
				"id":    identity.UserID,
				"email": identity.Email,
			},
		})
	}
}

func getUser(profileService *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := profileService.GetProfile(c.Request.Context(), UserIDFromContext(c))
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
