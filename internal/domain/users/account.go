package users

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidEmail = errors.New("invalid email")
	ErrWeakPassword = errors.New("password must be at least 8 characters long and contain both letters and numbers")
	ErrNotFound     = errors.New("user not found")
)

// maxUsernameSuffix bounds the numeric suffix search before falling back to a random token.
const maxUsernameSuffix = 10000

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases an address. Email is the authentication key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsEmailValid(email string) bool {
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}
	return emailPattern.MatchString(email)
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash. Accounts without
// a local password never match.
func (u User) CheckPassword(password string) bool {
	if u.Password == nil || *u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)) == nil
}

// GenerateUsername derives a username from the local part of email. Collisions get a
// numeric suffix (a, a1, a2, ...); past the suffix cap a random token is used.
func GenerateUsername(db *gorm.DB, email string) (string, error) {
	base := strings.SplitN(NormalizeEmail(email), "@", 2)[0]
	if base == "" {
		base = "user"
	}

	username := base
	for counter := 1; counter < maxUsernameSuffix; counter++ {
		taken, err := usernameTaken(db, username)
		if err != nil {
			return "", err
		}
		if !taken {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}

	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

func usernameTaken(db *gorm.DB, username string) (bool, error) {
	var count int64
	if err := db.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}

// Create normalizes the email, fills the username when absent and inserts the user.
func Create(db *gorm.DB, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if !IsEmailValid(user.Email) {
		return ErrInvalidEmail
	}

	var existing int64
	if err := db.Model(&User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return ErrEmailTaken
	}

	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		username, err := GenerateUsername(db, user.Email)
		if err != nil {
			return err
		}
		user.Username = username
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	if user.AuthProvider == "" {
		user.AuthProvider = ProviderLocal
	}
	if user.AICredits == 0 {
		user.AICredits = DefaultCredits
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func FindByID(db *gorm.DB, id uint) (User, error) {
	return findOne(db, "id = ?", id)
}

func FindByEmail(db *gorm.DB, email string) (User, error) {
	return findOne(db, "email = ?", NormalizeEmail(email))
}

func FindByCustomerRef(db *gorm.DB, customerID string) (User, error) {
	if customerID == "" {
		return User{}, ErrNotFound
	}
	return findOne(db, "stripe_customer_id = ?", customerID)
}

func findOne(db *gorm.DB, query string, arg any) (User, error) {
	var user User
	if err := db.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func SetCustomerRef(db *gorm.DB, userID uint, customerID string) error {
	return db.Model(&User{}).Where("id = ?", userID).Update("stripe_customer_id", customerID).Error
}

// DebitCredits subtracts amount from the balance in a single UPDATE. The balance may go
// negative; callers check the balance before spending, not after.
func DebitCredits(db *gorm.DB, userID uint, amount int) error {
	if amount <= 0 {
		return nil
	}
	return db.Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn("ai_credits", gorm.Expr("ai_credits - ?", amount)).Error
}

func AddPoints(db *gorm.DB, userID uint, points int) error {
	if points <= 0 {
		return nil
	}
	return db.Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", points)).Error
}
