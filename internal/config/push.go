package config

import "os"

const (
	pushIconURLEnv  = "PUSH_ICON_URL"
	pushImageURLEnv = "PUSH_IMAGE_URL"
)

// PushConfig carries the static web-push presentation assets attached
// to every notification. Both are optional.
type PushConfig struct {
	IconURL  string
	ImageURL string
}

func LoadPushConfig() *PushConfig {
	return &PushConfig{
		IconURL:  os.Getenv(pushIconURLEnv),
		ImageURL: os.Getenv(pushImageURLEnv),
	}
}
