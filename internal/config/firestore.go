package config

import (
	"os"
)

const (
	gcloudProjectEnv     = "GCLOUD_PROJECT_ID"
	firestoreDatabaseEnv = "FIRESTORE_DATABASE_ID"
	credentialsFileEnv   = "CREDENTIALS_FILE"

	defaultDatabaseID = "medimind"
)

type FirestoreConfig struct {
	ProjectID  string
	DatabaseID string
	// CredentialsFile points at a service-account key. Empty means
	// Application Default Credentials.
	CredentialsFile string
}

func LoadFirestoreConfig() *FirestoreConfig {
	databaseID := os.Getenv(firestoreDatabaseEnv)
	if databaseID == "" {
		databaseID = defaultDatabaseID
	}

	return &FirestoreConfig{
		ProjectID:       os.Getenv(gcloudProjectEnv),
		DatabaseID:      databaseID,
		CredentialsFile: os.Getenv(credentialsFileEnv),
	}
}

func (c *FirestoreConfig) Validate() error {
	if c == nil || c.ProjectID == "" {
		return ErrProjectIDMissing
	}
	return nil
}
