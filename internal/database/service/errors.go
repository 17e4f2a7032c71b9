package service

import "errors"

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNoteNotFound       = errors.New("note not found")
	ErrBlankTagName       = errors.New("tag names cannot be empty")
)
