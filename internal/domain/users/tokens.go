package users

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid or expired token")

func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IssueToken replaces any existing token of kind for the user. ttl of zero means no expiry.
func IssueToken(db *gorm.DB, userID uint, kind string, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	row := VerificationToken{UserID: userID, Token: token, Type: kind}
	if ttl > 0 {
		row.ExpiresAt = time.Now().Add(ttl)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND type = ?", userID, kind).Delete(&VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// ConsumeToken deletes a valid token and returns the user it belongs to.
func ConsumeToken(db *gorm.DB, token, kind string) (uint, error) {
	var row VerificationToken
	if err := db.Where("token = ? AND type = ?", token, kind).First(&row).Error; err != nil {
		return 0, ErrInvalidToken
	}
	if row.Expired(time.Now()) {
		_ = db.Delete(&row).Error
		return 0, ErrInvalidToken
	}
	if err := db.Delete(&row).Error; err != nil {
		return 0, fmt.Errorf("delete token: %w", err)
	}
	return row.UserID, nil
}
