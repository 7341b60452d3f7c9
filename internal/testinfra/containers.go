//go:build integration

// Package testinfra starts throwaway backing services for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	RedisImage = "redis:7-alpine"
	MongoImage = "mongo:7"
)

// SkipIfUnavailable skips the test in short mode or when Docker is not running
func SkipIfUnavailable(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// StartRedis runs a Redis container for the duration of the test and returns
// its host:port address.
func StartRedis(t *testing.T) string {
	t.Helper()
	return start(t, RedisImage, "6379/tcp", wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute))
}

// StartMongo runs a MongoDB container for the duration of the test and returns
// a connection URI.
func StartMongo(t *testing.T) string {
	t.Helper()
	return "mongodb://" + start(t, MongoImage, "27017/tcp", wait.ForListeningPort("27017/tcp").WithStartupTimeout(time.Minute))
}

func start(t *testing.T, image, port string, strategy wait.Strategy) string {
	t.Helper()
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
		t.Fatalf("failed to start %s: %v", image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate %s: %v", image, err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get %s host: %v", image, err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("failed to get %s port: %v", image, err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}
