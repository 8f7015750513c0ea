// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage is the official NATS server Docker image
	DefaultNATSImage = "nats:2.10-alpine"

	// DefaultNATSClientPort is the NATS client connection port
	DefaultNATSClientPort = "4222"

	// DefaultNATSMonitorPort is the NATS HTTP monitoring port
	DefaultNATSMonitorPort = "8222"
)

// NATSContainer represents a running NATS server container for testing
// the external-broker signal transport.
type NATSContainer struct {
	testcontainers.Container
	URL        string
	MonitorURL string
}

// NATSOption configures the NATS container.
type NATSOption func(*natsConfig)

type natsConfig struct {
	image        string
	jetStream    bool
	serverArgs   []string
	startTimeout time.Duration
}

// WithNATSImage sets a custom NATS Docker image.
func WithNATSImage(image string) NATSOption {
	return func(c *natsConfig) {
		c.image = image
	}
}

// WithoutJetStream starts the server with JetStream disabled. The signal
// pipeline requires JetStream, so this is only useful for exercising the
// stream provisioning error paths.
func WithoutJetStream() NATSOption {
	return func(c *natsConfig) {
		c.jetStream = false
	}
}

// WithServerArgs appends extra nats-server command line arguments.
func WithServerArgs(args ...string) NATSOption {
	return func(c *natsConfig) {
		c.serverArgs = append(c.serverArgs, args...)
	}
}

// WithStartTimeout sets the timeout for waiting for the server to start.
func WithStartTimeout(timeout time.Duration) NATSOption {
	return func(c *natsConfig) {
		c.startTimeout = timeout
	}
}

// NewNATSContainer creates and starts a new NATS server container with
// JetStream enabled, matching the broker the signal pipeline connects to
// when the embedded server is turned off.
//
// Example:
//
//	ctx := context.Background()
//	natsC, err := NewNATSContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer natsC.Terminate(ctx)
//
//	// Use natsC.URL to dial the broker
//	nc, err := signals.Connect(signals.DefaultNATSConfig(), natsC.URL, logger)
func NewNATSContainer(ctx context.Context, opts ...NATSOption) (*NATSContainer, error) {
	cfg := &natsConfig{
		image:        DefaultNATSImage,
		jetStream:    true,
		startTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// The image entrypoint is nats-server, so Cmd is just flags. The
	// monitoring port backs the HTTP wait strategy and the /healthz and
	// /varz checks in tests.
	args := []string{"-m", DefaultNATSMonitorPort}
	if cfg.jetStream {
		args = append(args, "-js")
	}
	args = append(args, cfg.serverArgs...)

	// Build container request
	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		Cmd:          args,
		ExposedPorts: []string{DefaultNATSClientPort + "/tcp", DefaultNATSMonitorPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultNATSClientPort+"/tcp"),
			wait.ForHTTP("/healthz").WithPort(DefaultNATSMonitorPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	// Start container
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create nats container: %w", err)
	}

	// Get container host and mapped ports
	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	clientPort, err := container.MappedPort(ctx, DefaultNATSClientPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped client port: %w", err)
	}

	monitorPort, err := container.MappedPort(ctx, DefaultNATSMonitorPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped monitor port: %w", err)
	}

	return &NATSContainer{
		Container:  container,
		URL:        fmt.Sprintf("nats://%s:%s", host, clientPort.Port()),
		MonitorURL: fmt.Sprintf("http://%s:%s", host, monitorPort.Port()),
	}, nil
}

// Terminate stops and removes the NATS container.
func (c *NATSContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}

// GetMonitorEndpoint returns the full URL for a NATS monitoring endpoint
// such as /varz, /healthz, or /jsz.
func (c *NATSContainer) GetMonitorEndpoint(path string) string {
	return c.MonitorURL + path
}

// Logs returns the container logs for debugging.
func (c *NATSContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	var logs []byte
	buf := make([]byte, 1024)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			logs = append(logs, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	return string(logs), nil
}
