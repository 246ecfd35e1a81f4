package transactions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"insightdesk/internal/config"
)

type fakeSheet struct {
	mu     sync.Mutex
	rows   [][]interface{}
	status int
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":append") || !strings.Contains(r.URL.Path, "sheet-1") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad range"}}`))
		return
	}

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.rows = append(f.rows, body.Values...)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
}

func newTestMirror(t *testing.T, sheet *fakeSheet) *SheetsMirror {
	t.Helper()
	server := httptest.NewServer(sheet)
	t.Cleanup(server.Close)

	mirror, err := NewSheetsMirror(context.Background(), NewMemoryLog(),
		config.SheetsConfig{SpreadsheetID: "sheet-1", Range: "History!A:J"},
		discardLogger(),
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return mirror
}

func TestSheetsMirrorAppendsRows(t *testing.T) {
	sheet := &fakeSheet{}
	mirror := newTestMirror(t, sheet)
	ctx := context.Background()

	r := NewPaidRecord("TX-1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), true)
	require.NoError(t, mirror.Create(ctx, r))

	r.Status = StatusCompleted
	r.StorageStatus = StorageStored
	require.NoError(t, mirror.Update(ctx, r))

	sheet.mu.Lock()
	defer sheet.mu.Unlock()
	require.Len(t, sheet.rows, 2)
	assert.Equal(t, "TX-1", sheet.rows[0][0])
	assert.Equal(t, "paid", sheet.rows[0][1])
	assert.Equal(t, "pending upload", sheet.rows[0][2])
	assert.Equal(t, "completed", sheet.rows[1][1])
	assert.Equal(t, "stored", sheet.rows[1][2])

	got, err := mirror.Get(ctx, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestSheetsMirrorFailureDoesNotFailWrite(t *testing.T) {
	sheet := &fakeSheet{status: http.StatusBadRequest}
	mirror := newTestMirror(t, sheet)
	ctx := context.Background()

	require.NoError(t, mirror.Create(ctx, NewPaidRecord("TX-1", time.Now(), false)))
	_, err := mirror.Get(ctx, "TX-1")
	assert.NoError(t, err)
}

func TestSheetsMirrorSkipsMirrorOnWriteError(t *testing.T) {
	sheet := &fakeSheet{}
	mirror := newTestMirror(t, sheet)

	err := mirror.Update(context.Background(), &Record{ID: "TX-missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	sheet.mu.Lock()
	defer sheet.mu.Unlock()
	assert.Empty(t, sheet.rows)
}

func TestNewSheetsMirrorRequiresSpreadsheet(t *testing.T) {
	_, err := NewSheetsMirror(context.Background(), NewMemoryLog(), config.SheetsConfig{}, discardLogger())
	assert.Error(t, err)
}
