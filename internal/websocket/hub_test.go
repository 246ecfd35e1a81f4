package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightdesk/internal/config"
	"insightdesk/internal/infrastructure"
	"insightdesk/internal/shared/testutil"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	hub.Start()
	defer hub.Stop()

	client := NewClient(hub, newMockConnection(), "trace-1", config.WebSocketConfig{}, logger)
	hub.Register(client)

	greeting := receive(t, client)
	assert.Equal(t, TypeConnection, greeting.Type)
	assert.Equal(t, "trace-1", greeting.TraceID)
	assert.Equal(t, 1, hub.ClientCount())

	ctx := infrastructure.WithTraceID(context.Background(), "trace-2")
	hub.BroadcastWithTrace(ctx, "analysis_completed", map[string]string{"transactionId": "TX-1"})

	msg := receive(t, client)
	assert.Equal(t, "analysis_completed", msg.Type)
	assert.Equal(t, "trace-2", msg.TraceID)
	assert.Equal(t, map[string]interface{}{"transactionId": "TX-1"}, msg.Data)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	stats := hub.Stats()
	assert.Equal(t, int64(1), stats["total_connections"])
	assert.Equal(t, int64(1), stats["messages_sent"])
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(nil, nil)

	// Not started: the queue fills and further messages are dropped.
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.Broadcast("transaction_updated", i)
	}
	assert.Equal(t, int64(10), hub.Stats()["messages_dropped"])
}

func TestHubStopReleasesClients(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()

	conn := newMockConnection()
	client := NewClient(hub, conn, "", config.WebSocketConfig{}, nil)
	hub.Register(client)
	receive(t, client)

	hub.Stop()
	_, open := <-client.send
	assert.False(t, open)

	// Unregister after Stop returns instead of blocking.
	hub.Unregister(client)
	hub.Stop()
}

func TestClientPumps(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	defer hub.Stop()

	conn := newMockConnection()
	client := NewClient(hub, conn, "", config.WebSocketConfig{PongWait: time.Minute}, nil)
	assert.Equal(t, 54*time.Second, client.pingPeriod)

	hub.Register(client)
	go client.WritePump()
	go client.ReadPump()

	hub.Broadcast("artifacts_stored", nil)
	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
