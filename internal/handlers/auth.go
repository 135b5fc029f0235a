package handlers

import (
	"errors"
	"net/http"
	"strings"

	"genzfits/internal/database"
	"genzfits/internal/logger"
	"genzfits/internal/middleware"
	"genzfits/internal/models"
	"genzfits/internal/session"
	"genzfits/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serverErrorMessage = "Server error, try again later."

// envelope is the response shape of the auth endpoints.
type envelope struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

func respondEnvelopeError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Status: "error", Message: message})
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Signup registers a user and opens a session for it.
func Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondEnvelopeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.Username) == "" ||
		strings.TrimSpace(req.Mobile) == "" || req.Password == "" {
		respondEnvelopeError(c, http.StatusBadRequest, "Full name, username, mobile and password are required")
		return
	}

	user, err := store.CreateUser(c.Request.Context(), database.DB, models.User{
		FullName: req.FullName,
		Username: req.Username,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		respondEnvelopeError(c, http.StatusBadRequest, "Username already exists")
		return
	case errors.Is(err, store.ErrMobileTaken):
		respondEnvelopeError(c, http.StatusBadRequest, "Mobile number already exists")
		return
	case err != nil:
		logger.FromGin(c).Error("Error creating user", zap.Error(err))
		respondEnvelopeError(c, http.StatusInternalServerError, serverErrorMessage)
		return
	}

	startSession(c, user, "User registered successfully!")
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login authenticates by username or mobile number and opens a session.
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		respondEnvelopeError(c, http.StatusBadRequest, "Identifier and password are required")
		return
	}

	user, err := store.Authenticate(c.Request.Context(), database.DB, req.Identifier, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		logger.FromGin(c).Info("Rejected login", zap.String("identifier", req.Identifier))
		respondEnvelopeError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		logger.FromGin(c).Error("Error authenticating user", zap.Error(err))
		respondEnvelopeError(c, http.StatusInternalServerError, serverErrorMessage)
		return
	}

	startSession(c, user, "Login successful")
}

// startSession replaces any session the client already holds with a new one
// bound to user and writes the envelope.
func startSession(c *gin.Context, user models.User, message string) {
	sessionStore := sessions()
	if previous, err := c.Cookie(session.CookieName); err == nil && previous != "" {
		sessionStore.Invalidate(previous)
	}

	sess, err := sessionStore.Create(user)
	if err != nil {
		logger.FromGin(c).Error("Error creating session", zap.Error(err))
		respondEnvelopeError(c, http.StatusInternalServerError, serverErrorMessage)
		return
	}

	setSessionCookie(c, sess.Token)
	logger.FromGin(c).Info("Session opened", zap.Int64("user_id", user.ID), zap.Bool("admin", user.IsAdmin))

	c.JSON(http.StatusOK, envelope{
		Status:    "success",
		Message:   message,
		Data:      user,
		SessionID: sess.Token,
	})
}

// Logout ends the caller's session. It succeeds whether or not one exists.
func Logout(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
		sessions().Invalidate(token)
	}
	clearSessionCookie(c)

	c.JSON(http.StatusOK, envelope{Status: "success", Message: "Logged out successfully"})
}

func CheckSession(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "active",
		"user":      sess.User,
		"sessionId": sess.Token,
	})
}

// Browser-session cookie: no Max-Age, so it goes away with the browser while
// the server enforces the inactivity window.
func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, 0, "/", "", currentOptions().CookieSecure, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", currentOptions().CookieSecure, true)
}
