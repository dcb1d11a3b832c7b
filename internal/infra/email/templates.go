package email

import (
	"fmt"
	"net/url"
)

func link(appURL, path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", appURL, path, url.QueryEscape(token))
}

func VerificationMessage(appURL, to, token string) Message {
	l := link(appURL, "/verify-email", token)
	return Message{
		To:      to,
		Subject: "Verify your email",
		Text:    fmt.Sprintf("Welcome! Confirm your email address by opening the link below:\n\n%s\n\nThe link expires in 24 hours.", l),
		HTML:    fmt.Sprintf(`<p>Welcome! Confirm your email address:</p><p><a href="%s">Verify email</a></p><p>The link expires in 24 hours.</p>`, l),
	}
}

func PasswordResetMessage(appURL, to, token string) Message {
	l := link(appURL, "/reset-password", token)
	return Message{
		To:      to,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("We received a request to reset your password. Open the link below to choose a new one:\n\n%s\n\nThe link expires in 1 hour. If you did not ask for this, ignore this email.", l),
		HTML:    fmt.Sprintf(`<p>We received a request to reset your password.</p><p><a href="%s">Choose a new password</a></p><p>The link expires in 1 hour. If you did not ask for this, ignore this email.</p>`, l),
	}
}
