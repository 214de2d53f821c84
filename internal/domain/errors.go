package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrOCRFailed     = errors.New("ocr engine failed")
	ErrLockHeld      = errors.New("lock already held")
)
