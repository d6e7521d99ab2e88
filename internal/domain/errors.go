package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrReminderNotFound   = errors.New("reminder not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoDeviceToken      = errors.New("no device token registered")
	ErrInvalidDeviceToken = errors.New("device token failed sanity check")
	ErrDispatchFailed     = errors.New("task dispatch failed")
	ErrDeliveryFailed     = errors.New("push delivery failed")
	ErrNotCancelable      = errors.New("reminder is not cancelable")
)
