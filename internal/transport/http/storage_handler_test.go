package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"insightdesk/internal/services"
	"insightdesk/internal/storage"
)

func TestCreateUpload(t *testing.T) {
	const validBody = `{"transactionId":"TX-1","fileName":"sales.csv","contentType":"text/csv"}`

	tests := []struct {
		name       string
		body       string
		configured bool
		setup      func(s *services.MockUploadSigner)
		wantStatus int
		wantError  string
	}{
		{
			name:       "signed url",
			body:       validBody,
			configured: true,
			setup: func(s *services.MockUploadSigner) {
				s.On("CreateUpload", mock.Anything, "TX-1", "sales.csv", "text/csv").Return(&storage.SignedUpload{
					UploadURL:        "https://proj.supabase.co/storage/v1/object/upload/sign/uploads/TX-1/sales.csv?token=abc",
					PublicURL:        "https://proj.supabase.co/storage/v1/object/public/uploads/TX-1/sales.csv",
					ObjectPath:       "TX-1/sales.csv",
					ExpiresInSeconds: 7200,
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing content type",
			body:       `{"transactionId":"TX-1","fileName":"sales.csv"}`,
			configured: true,
			wantStatus: http.StatusBadRequest,
			wantError:  "transactionId, fileName, and contentType are required.",
		},
		{
			name:       "path traversal in file name",
			body:       `{"transactionId":"TX-1","fileName":"../secrets.csv","contentType":"text/csv"}`,
			configured: true,
			wantStatus: http.StatusBadRequest,
			wantError:  "transactionId, fileName, and contentType are required.",
		},
		{
			name:       "storage not configured",
			body:       validBody,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Supabase storage is not configured.",
		},
		{
			name:       "storage rejects",
			body:       validBody,
			configured: true,
			setup: func(s *services.MockUploadSigner) {
				s.On("CreateUpload", mock.Anything, "TX-1", "sales.csv", "text/csv").
					Return(nil, &storage.StorageRejectedError{Op: "sign", Err: errors.New("Bucket not found")})
			},
			wantStatus: http.StatusBadGateway,
			wantError:  "Unable to create signed upload URL.",
		},
		{
			name:       "unexpected failure",
			body:       validBody,
			configured: true,
			setup: func(s *services.MockUploadSigner) {
				s.On("CreateUpload", mock.Anything, "TX-1", "sales.csv", "text/csv").Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t)
			var svc *services.StorageService
			signer := &services.MockUploadSigner{}
			if tt.configured {
				svc = services.NewStorageService(signer, deps.logger)
			} else {
				svc = services.NewStorageService(nil, deps.logger)
			}
			if tt.setup != nil {
				tt.setup(signer)
			}
			router := NewStorageHandler(svc, deps.validator, deps.logger, deps.errorHandler).Routes()

			req := httptest.NewRequest(http.MethodPost, "/create-upload", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				assert.NotContains(t, rec.Body.String(), "Bucket not found")
				return
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "TX-1/sales.csv", body["objectPath"])
				assert.Equal(t, float64(7200), body["expiresInSeconds"])
				signer.AssertExpectations(t)
			}
		})
	}
}
