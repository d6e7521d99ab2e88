package config

import "errors"

var (
	ErrProjectIDMissing     = errors.New("GCLOUD_PROJECT_ID is required")
	ErrInvalidTimeLocation  = errors.New("TIME_LOCATION must be a valid IANA zone name")
	ErrIdentityUnconfigured = errors.New("either API_TOKENS or DEFAULT_USER_ID is required")
)
