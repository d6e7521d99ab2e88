package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnv         = "PORT"
	logLevelEnv     = "LOG_LEVEL"
	timeLocationEnv = "TIME_LOCATION"

	taskQueueLocationEnv   = "GCLOUD_LOCATION_ID"
	taskQueueQueueEnv      = "GCLOUD_QUEUE_ID"
	taskQueueTargetURLEnv  = "GCLOUD_TARGET_URL"
	taskQueueMaxRetriesEnv = "TASK_QUEUE_MAX_RETRIES"

	defaultPort       = "8080"
	defaultMaxRetries = 3
)

type Config struct {
	Port     string
	LogLevel slog.Level
	// TimeLocation is the civil-time zone submitted reminder times are
	// interpreted in before normalization to UTC.
	TimeLocation *time.Location
	Firestore    *FirestoreConfig
	TaskQueue    TaskQueueConfig
	Push         *PushConfig
	Identity     *IdentityConfig
}

type TaskQueueConfig struct {
	ProjectID  string
	LocationID string
	QueueID    string
	TargetURL  string

	MaxRetries int
}

func Load() (*Config, error) {
	port := os.Getenv(portEnv)
	if port == "" {
		port = defaultPort
	}

	loc := time.UTC
	if name := os.Getenv(timeLocationEnv); name != "" {
		parsed, err := time.LoadLocation(name)
		if err != nil {
			return nil, ErrInvalidTimeLocation
		}
		loc = parsed
	}

	maxRetries := defaultMaxRetries
	if v := os.Getenv(taskQueueMaxRetriesEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	return &Config{
		Port:         port,
		LogLevel:     parseLogLevel(os.Getenv(logLevelEnv)),
		TimeLocation: loc,
		Firestore:    LoadFirestoreConfig(),
		TaskQueue: TaskQueueConfig{
			ProjectID:  os.Getenv(gcloudProjectEnv),
			LocationID: os.Getenv(taskQueueLocationEnv),
			QueueID:    os.Getenv(taskQueueQueueEnv),
			TargetURL:  os.Getenv(taskQueueTargetURLEnv),

			MaxRetries: maxRetries,
		},
		Push:     LoadPushConfig(),
		Identity: LoadIdentityConfig(),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
