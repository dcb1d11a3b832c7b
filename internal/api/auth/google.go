package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	googleIssuer = "https://accounts.google.com"
	stateCookie  = "oauth_state"
)

func (h *Handler) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.google.ClientID,
		ClientSecret: h.google.ClientSecret,
		RedirectURL:  h.google.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google.ClientID == "" {
		respond.Error(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	state, err := randomState()
	if err != nil {
		respond.Internal(c, err, "failed to generate state")
		return
	}
	c.SetCookie(stateCookie, state, 300, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if code == "" || state == "" {
		respond.Error(c, http.StatusBadRequest, "missing code/state")
		return
	}
	if cookieState, err := c.Cookie(stateCookie); err != nil || cookieState != state {
		respond.Error(c, http.StatusBadRequest, "invalid oauth state")
		return
	}

	ctx := c.Request.Context()
	tok, err := h.oauthConfig().Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "failed to exchange code")
		return
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		respond.Error(c, http.StatusUnauthorized, "missing id_token")
		return
	}

	claims, err := h.verifyIDToken(c, rawIDToken)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := findOrCreateGoogleUser(h.db, claims)
	if err != nil {
		respond.Internal(c, err, "failed to create user")
		return
	}
	token, err := IssueToken(h.secret, user, time.Now())
	if err != nil {
		respond.Internal(c, err, "could not create token")
		return
	}

	if h.google.FrontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": token})
		return
	}
	c.Redirect(http.StatusFound, h.google.FrontendRedirect+"?token="+url.QueryEscape(token))
}

type googleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (h *Handler) verifyIDToken(c *gin.Context, raw string) (*googleClaims, error) {
	ctx := c.Request.Context()
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}
	idToken, err := provider.Verifier(&oidc.Config{ClientID: h.google.ClientID}).Verify(ctx, raw)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	return &claims, nil
}

// findOrCreateGoogleUser matches by Google subject, then links an existing account by
// email, then creates a verified account.
func findOrCreateGoogleUser(db *gorm.DB, gc *googleClaims) (users.User, error) {
	var user users.User
	if err := db.Where("google_sub = ?", gc.Sub).First(&user).Error; err == nil {
		return user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, err
	}

	sub := gc.Sub
	user, err := users.FindByEmail(db, gc.Email)
	switch {
	case err == nil:
		if user.GoogleSub == nil {
			user.GoogleSub = &sub
			user.IsVerified = true
			if err := db.Model(&user).Updates(map[string]any{
				"google_sub":        sub,
				"is_email_verified": true,
			}).Error; err != nil {
				return users.User{}, fmt.Errorf("link google account: %w", err)
			}
		}
		return user, nil
	case !errors.Is(err, users.ErrNotFound):
		return users.User{}, err
	}

	user = users.User{
		Email:        gc.Email,
		AuthProvider: users.ProviderGoogle,
		GoogleSub:    &sub,
		IsVerified:   true,
	}
	if err := users.Create(db, &user); err != nil {
		return users.User{}, err
	}
	return user, nil
}
