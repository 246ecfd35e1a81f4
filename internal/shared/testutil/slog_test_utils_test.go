package testutil

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records and attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("analysis completed", slog.String("transaction_id", "TX-1"))
		logger.Error("upload failed", slog.Int("status", 502))

		records := handler.GetRecords()
		require.Len(t, records, 2)
		assert.True(t, handler.ContainsMessage("analysis completed"))
		assert.True(t, handler.ContainsAttr("transaction_id", "TX-1"))
		assert.Equal(t, int64(502), records[1].Attrs["status"])
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelDebug), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("derived loggers share the sink", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "payments")).Info("checkout created")
		logger.WithGroup("request").Info("served", slog.String("path", "/healthz"))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsAttr("component", "payments"))
		assert.True(t, handler.ContainsAttr("request.path", "/healthz"))
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("one")
		logger.Info("two")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Zero(t, handler.Count())
		assert.False(t, handler.ContainsMessage("one"))
	})
}

func TestMultipartUpload(t *testing.T) {
	body, contentType := MultipartUpload(t, "file", "sales.csv", []byte(SalesCSV), map[string]string{"transactionId": "TX-1"})

	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Contains(t, body.String(), `name="transactionId"`)
	assert.Contains(t, body.String(), `filename="sales.csv"`)
	assert.Contains(t, body.String(), "Date,Region,Sales,Cost,Units,Status")
}
