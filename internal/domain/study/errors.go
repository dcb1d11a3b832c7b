package study

import "errors"

var (
	ErrInvalid   = errors.New("invalid input")
	ErrNoSession = errors.New("no flashcard session in progress")
)
