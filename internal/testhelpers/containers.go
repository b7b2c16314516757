//go:build integration

// Package testhelpers starts throwaway MongoDB and Redis containers for
// integration tests. Docker must be reachable; tests skip in -short mode.
package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartMongo runs mongo:7 and returns a connection URI.
func StartMongo(t *testing.T) string {
	t.Helper()
	return "mongodb://" + start(t, "mongo:7", "27017/tcp", wait.ForListeningPort("27017/tcp"))
}

// StartRedis runs redis:7-alpine and returns a redis:// URL.
func StartRedis(t *testing.T) string {
	t.Helper()
	return "redis://" + start(t, "redis:7-alpine", "6379/tcp", wait.ForLog("Ready to accept connections")) + "/0"
}

// start returns the host:port of the single exposed port.
func start(t *testing.T, image, port string, strategy wait.Strategy) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container-based test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port},
			WaitingFor:   strategy,
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s: %v", image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate %s: %v", image, err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get %s endpoint: %v", image, err)
	}
	return endpoint
}
