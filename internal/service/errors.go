package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")

	ErrTokenEmpty               = errors.New("token is empty")
	ErrTokenInvalid             = errors.New("token is invalid")
	ErrTokenUnexpectedSignature = errors.New("unexpected signing method")
	ErrTokenInvalidClaims       = errors.New("token claims are invalid")
)
