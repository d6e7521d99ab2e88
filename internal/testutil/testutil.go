package testutil

import (
	"context"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/gcloud"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const emulatorImage = "gcr.io/google.com/cloudsdktool/google-cloud-cli:367.0.0-emulators"

func SetupFirestoreContainer(ctx context.Context, t *testing.T) (*firestore.Client, func()) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("failed to start firestore emulator: %v", r)
		}
	}()

	container, err := gcloud.RunFirestore(ctx, emulatorImage,
		gcloud.WithProjectID("reminder-dispatch-test"),
	)
	if err != nil {
		t.Skipf("failed to start firestore emulator: %v", err)
	}

	conn, err := grpc.NewClient(container.URI, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Skipf("failed to dial firestore emulator: %v", err)
	}

	client, err := firestore.NewClient(ctx, container.Settings.ProjectID, option.WithGRPCConn(conn))
	if err != nil {
		t.Skipf("failed to create firestore client: %v", err)
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close firestore client: %v", err)
		}

		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate firestore emulator: %v", err)
		}
	}

	return client, cleanup
}
