package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"

	"insightdesk/internal/config"
)

var (
	unsafeTxChars   = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)
)

// ArtifactStore persists one artifact blob and returns its public URL.
type ArtifactStore interface {
	Store(ctx context.Context, transactionID string, blob []byte, fileName, contentType string) (string, error)
}

// SignedUpload describes a pre-signed upload slot in the bucket.
type SignedUpload struct {
	UploadURL        string `json:"uploadUrl"`
	PublicURL        string `json:"publicUrl"`
	ObjectPath       string `json:"objectPath"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

// Client talks to Supabase storage through storage-go with the service
// role key.
type Client struct {
	endpoint   string
	key        string
	bucket     string
	ttlSeconds int
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithClock replaces the clock used for object path timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithTimeout bounds every storage call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a storage client. It returns ErrNotConfigured when the
// URL, key or bucket is missing.
func NewClient(cfg config.StorageConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.ClientTimeout()
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	ttl := cfg.SignedURLTTLSecs
	if ttl <= 0 {
		ttl = 7200
	}

	c := &Client{
		endpoint:   strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		key:        cfg.ServiceRoleKey,
		bucket:     cfg.Bucket,
		ttlSeconds: ttl,
		timeout:    timeout,
		logger:     logger.With(slog.String("component", "supabase_storage")),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// api returns a fresh SDK client. storage-go keeps per-upload headers on
// the client, so concurrent uploads must not share one.
func (c *Client) api() *storage_go.Client {
	return storage_go.NewClient(c.endpoint, c.key, map[string]string{"apikey": c.key})
}

// call runs fn under the client timeout. storage-go takes no context, so a
// canceled ctx returns early and leaves fn to finish on its own.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage %s: %w", op, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return classify(op, err)
	case <-ctx.Done():
		return &StorageUnavailableError{Op: op, Err: ctx.Err()}
	}
}

// classify maps SDK errors: transport failures mean the bucket was not
// reached, anything else is an answer from the storage API.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &StorageUnavailableError{Op: op, Err: err}
	}
	return &StorageRejectedError{Op: op, Err: err}
}

// SafeTransactionID replaces every character outside [a-zA-Z0-9-_] with '_'.
func SafeTransactionID(id string) string {
	return unsafeTxChars.ReplaceAllString(id, "_")
}

// SafeFileName replaces every character outside [a-zA-Z0-9._-] with '_'.
func SafeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// ObjectPath builds transactions/<safeTx>/<unixMillis>-<safeName>.
func ObjectPath(transactionID, fileName string, at time.Time) string {
	return fmt.Sprintf("transactions/%s/%d-%s", SafeTransactionID(transactionID), at.UnixMilli(), SafeFileName(fileName))
}

// PublicURL returns the public object URL for path.
func (c *Client) PublicURL(objectPath string) string {
	return c.api().GetPublicUrl(c.bucket, objectPath).SignedURL
}

// CreateUpload reserves a signed upload URL for fileName under the
// transaction's folder. The browser uploads to it directly.
func (c *Client) CreateUpload(ctx context.Context, transactionID, fileName, contentType string) (*SignedUpload, error) {
	objectPath := ObjectPath(transactionID, fileName, c.now())

	var signed storage_go.SignedUploadUrlResponse
	err := c.call(ctx, "sign", func() error {
		var err error
		signed, err = c.api().CreateSignedUploadUrl(c.bucket, objectPath)
		return err
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sign request failed",
			slog.String("object_path", objectPath),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if signed.Url == "" {
		return nil, &StorageRejectedError{Op: "sign", Err: errors.New("missing signed url")}
	}

	return &SignedUpload{
		UploadURL:        c.absoluteURL(signed.Url),
		PublicURL:        c.PublicURL(objectPath),
		ObjectPath:       objectPath,
		ExpiresInSeconds: c.ttlSeconds,
	}, nil
}

// Store uploads blob under the transaction's folder and returns its public
// URL.
func (c *Client) Store(ctx context.Context, transactionID string, blob []byte, fileName, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := ObjectPath(transactionID, fileName, c.now())

	err := c.call(ctx, "upload", func() error {
		_, err := c.api().UploadFile(c.bucket, objectPath, bytes.NewReader(blob), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      boolPtr(false),
		})
		return err
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "artifact upload failed",
			slog.String("transaction_id", transactionID),
			slog.String("file_name", fileName),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("upload failed for %s: %w", fileName, err)
	}

	c.logger.InfoContext(ctx, "artifact stored",
		slog.String("transaction_id", transactionID),
		slog.String("object_path", objectPath),
		slog.Int("bytes", len(blob)),
	)
	return c.PublicURL(objectPath), nil
}

// Ping checks that the bucket is reachable with the configured key.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", func() error {
		_, err := c.api().GetBucket(c.bucket)
		return err
	})
}

// absoluteURL resolves a signed URL returned relative to /storage/v1.
func (c *Client) absoluteURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "/storage/v1/") {
		return strings.TrimSuffix(c.endpoint, "/storage/v1") + raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.endpoint + raw
}

func boolPtr(b bool) *bool { return &b }
