//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const kuboImage = "ipfs/kubo:v0.32.1"

var (
	kuboOnce sync.Once
	kuboAddr string
	kuboErr  error
)

// getKubo returns the shared Kubo API address, starting the container if
// needed. The container is shared across all tests for performance.
func getKubo(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	kuboOnce.Do(func() {
		ctx := context.Background()
		kuboAddr, kuboErr = startKuboContainer(ctx)
	})

	if kuboErr != nil {
		tb.Fatalf("start kubo container: %v", kuboErr)
	}

	return kuboAddr
}

// startKuboContainer starts a Kubo node and returns its API URL.
func startKuboContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        kuboImage,
		ExposedPorts: []string{"5001/tcp"},
		WaitingFor:   wait.ForLog("Daemon is ready"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5001/tcp")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}
