package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/users"
	"study-platform/internal/infra/email"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	tokenTTL        = 24 * time.Hour
	verificationTTL = 24 * time.Hour
	resetTTL        = time.Hour

	resetAckMessage = "If your email exists, you'll receive a reset link."
)

type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	FrontendRedirect string
}

type Handler struct {
	db     *gorm.DB
	mail   email.Sender
	secret []byte
	appURL string
	google GoogleConfig
}

func NewHandler(db *gorm.DB, mail email.Sender, jwtSecret, appURL string, google GoogleConfig) *Handler {
	return &Handler{db: db, mail: mail, secret: []byte(jwtSecret), appURL: appURL, google: google}
}

// IssueToken signs the app session token for user.
func IssueToken(secret []byte, user users.User, now time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(tokenTTL).Unix(),
	})
	return t.SignedString(secret)
}

func (h *Handler) sendVerification(c *gin.Context, user users.User) error {
	token, err := users.IssueToken(h.db, user.ID, users.TokenEmailVerification, verificationTTL)
	if err != nil {
		return err
	}
	return h.mail.Send(c.Request.Context(), email.VerificationMessage(h.appURL, user.Email, token))
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, err)
		return
	}
	if !users.IsPasswordStrong(input.Password) {
		respond.BadRequest(c, users.ErrWeakPassword)
		return
	}

	hashed, err := users.HashPassword(input.Password)
	if err != nil {
		respond.Internal(c, err, "Failed to hash password")
		return
	}
	user := users.User{Email: input.Email, Username: input.Username, Password: &hashed}
	switch err := users.Create(h.db, &user); {
	case errors.Is(err, users.ErrInvalidEmail):
		respond.Error(c, http.StatusBadRequest, "Invalid email format")
		return
	case errors.Is(err, users.ErrEmailTaken):
		respond.Error(c, http.StatusConflict, "Email already registered")
		return
	case err != nil:
		respond.Internal(c, err, "Failed to create user")
		return
	}

	sent := true
	if err := h.sendVerification(c, user); err != nil {
		log.Printf("[auth] verification mail failed user=%d err=%v", user.ID, err)
		sent = false
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "User registered successfully. Please check your email to verify your account.",
		"email_sent": sent,
	})
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, err)
		return
	}

	user, err := users.FindByEmail(h.db, input.Email)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.Password == nil || *user.Password == "" {
		respond.Error(c, http.StatusUnauthorized, "This account uses Google sign-in")
		return
	}
	if !user.CheckPassword(input.Password) {
		respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsVerified {
		respond.Error(c, http.StatusForbidden, "Please verify your email before logging in")
		return
	}

	token, err := IssueToken(h.secret, user, time.Now())
	if err != nil {
		respond.Internal(c, err, "Could not create token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GET /verify?token=
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respond.Error(c, http.StatusBadRequest, "Missing token")
		return
	}
	userID, err := users.ConsumeToken(h.db, token, users.TokenEmailVerification)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	if err := h.db.Model(&users.User{}).Where("id = ?", userID).Update("is_email_verified", true).Error; err != nil {
		respond.Internal(c, err, "Failed to verify email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// POST /resend-verification
func (h *Handler) ResendVerification(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "Missing or invalid email")
		return
	}

	user, err := users.FindByEmail(h.db, body.Email)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "User not found")
		return
	}
	if user.IsVerified {
		respond.Error(c, http.StatusBadRequest, "User already verified")
		return
	}
	if err := h.sendVerification(c, user); err != nil {
		respond.Internal(c, err, "Failed to send verification email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email resent"})
}

// POST /request-password-reset always answers the same way so addresses cannot be probed.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid email")
		return
	}

	user, err := users.FindByEmail(h.db, body.Email)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": resetAckMessage})
		return
	}
	token, err := users.IssueToken(h.db, user.ID, users.TokenPasswordReset, resetTTL)
	if err != nil {
		respond.Internal(c, err, "Failed to create reset token")
		return
	}
	if err := h.mail.Send(c.Request.Context(), email.PasswordResetMessage(h.appURL, user.Email, token)); err != nil {
		log.Printf("[auth] reset mail failed user=%d err=%v", user.ID, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": resetAckMessage})
}

// POST /reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var body struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if !users.IsPasswordStrong(body.NewPassword) {
		respond.BadRequest(c, users.ErrWeakPassword)
		return
	}

	userID, err := users.ConsumeToken(h.db, body.Token, users.TokenPasswordReset)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	if err := h.setPassword(userID, body.NewPassword); err != nil {
		respond.Internal(c, err, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// POST /change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if !users.IsPasswordStrong(body.NewPassword) {
		respond.BadRequest(c, users.ErrWeakPassword)
		return
	}

	user, err := users.FindByID(h.db, respond.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "User not found")
		return
	}
	if user.Password == nil || *user.Password == "" {
		respond.Error(c, http.StatusBadRequest, "This account does not have a password. Sign in with Google or set a password first.")
		return
	}
	if !user.CheckPassword(body.OldPassword) {
		respond.Error(c, http.StatusUnauthorized, "Old password is incorrect")
		return
	}
	if err := h.setPassword(user.ID, body.NewPassword); err != nil {
		respond.Internal(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *Handler) setPassword(userID uint, password string) error {
	hashed, err := users.HashPassword(password)
	if err != nil {
		return err
	}
	return h.db.Model(&users.User{}).Where("id = ?", userID).Update("password", hashed).Error
}
