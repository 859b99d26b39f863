package service

import "errors"

var (
	ErrQRCodeNotFound     = errors.New("qr code not found")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidURL         = errors.New("invalid URL format")
	ErrInvalidFallbackURL = errors.New("invalid fallback URL format")
	ErrInvalidMaxScans    = errors.New("max scans must be a positive number")
	ErrNoFieldsToUpdate   = errors.New("no valid fields to update")
	ErrShortIDExhausted   = errors.New("failed to generate a unique short id")
)
