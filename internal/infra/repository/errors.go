package repository

import "errors"

var (
	ErrInvalidReminderData = errors.New("invalid reminder data")
	ErrInvalidUserData     = errors.New("invalid user data")
)
