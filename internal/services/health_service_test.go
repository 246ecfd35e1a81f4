package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fixedCounter int

func (c fixedCounter) ClientCount() int { return int(c) }

func TestHealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", "", nil, nil, nil, nil, nil)
	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
}

func TestReadinessCheck(t *testing.T) {
	healthy := &MockHealthChecker{}
	healthy.On("Ping", mock.Anything).Return(nil)
	broken := &MockHealthChecker{}
	broken.On("Ping", mock.Anything).Return(errors.New("database is locked"))

	t.Run("ready", func(t *testing.T) {
		hs := NewHealthService("1.0.0", "", map[string]HealthChecker{"transactions": healthy},
			map[string]bool{"payments": false, "storage": true}, nil, nil, nil)

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)
		assert.Equal(t, "ready", status.Services["transactions"].(ServiceHealth).Status)
		assert.Equal(t, "disabled", status.Services["payments"].(ServiceHealth).Status)
		assert.Equal(t, "ready", status.Services["storage"].(ServiceHealth).Status)
	})

	t.Run("not ready", func(t *testing.T) {
		hs := NewHealthService("1.0.0", "", map[string]HealthChecker{"transactions": broken, "storage": healthy},
			map[string]bool{"storage": true}, nil, nil, nil)

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
		sh := status.Services["transactions"].(ServiceHealth)
		assert.Contains(t, sh.Message, "database is locked")
	})
}

func TestLivenessAndVersion(t *testing.T) {
	sessions := NewSessionStore(time.Hour)
	hs := NewHealthService("1.0.0", "2025-06-01", nil, nil, fixedCounter(3), sessions, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, 3, live.Runtime["websocket_clients"])
	assert.Equal(t, 0, live.Runtime["sessions"])

	version := hs.Version()
	assert.Equal(t, "1.0.0", version["version"])
	assert.Equal(t, "2025-06-01", version["build_time"])
}
