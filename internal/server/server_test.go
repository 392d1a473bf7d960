package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/config"
)

func TestNewRegistersServer(t *testing.T) {
	s, _ := newTestServer(t)
	require.NotNil(t, s.mcpServer)
}

func TestServerLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg = config.ServerConfig{Transport: config.TransportStreamableHTTP, Host: "127.0.0.1", Port: 0}

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.Error(t, s.Start(ctx), "second start must fail")

	require.NoError(t, s.Stop(ctx))
	require.Error(t, s.Stop(ctx), "stop before start must fail")
}

func TestServerEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ServerConfig
		expected string
	}{
		{
			name:     "stdio",
			cfg:      config.ServerConfig{Transport: config.TransportStdio},
			expected: "stdio",
		},
		{
			name:     "sse",
			cfg:      config.ServerConfig{Transport: config.TransportSSE, Host: "localhost", Port: 8080},
			expected: "http://localhost:8080/sse",
		},
		{
			name:     "streamable-http",
			cfg:      config.ServerConfig{Transport: config.TransportStreamableHTTP, Host: "localhost", Port: 8080},
			expected: "http://localhost:8080/mcp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			s.cfg = tt.cfg
			assert.Equal(t, tt.expected, s.Endpoint())
		})
	}
}
