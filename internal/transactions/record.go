package transactions

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Storage states of a transaction's artifacts.
const (
	StoragePending       = "pending upload"
	StorageNotConfigured = "storage_not_configured"
	StorageUploading     = "uploading"
	StorageStored        = "stored"
	StorageFailed        = "upload_failed"
)

// Artifacts holds the public URLs of the stored files. Empty means not stored.
type Artifacts struct {
	OriginalURL     string `json:"originalUrl"`
	CleanedCSVURL   string `json:"cleanedCsvUrl"`
	CleanedExcelURL string `json:"cleanedExcelUrl"`
	DashboardPDFURL string `json:"dashboardPdfUrl"`
}

// Record is one paid transaction.
type Record struct {
	ID            string     `json:"id"`
	PaidAt        time.Time  `json:"paidAt"`
	UploadedAt    *time.Time `json:"uploadedAt"`
	FileName      string     `json:"fileName"`
	Status        Status     `json:"status"`
	StorageStatus string     `json:"storageStatus"`
	Artifacts     Artifacts  `json:"artifacts"`
}

// NewID returns a TX-<unix millis> identifier.
func NewID(now time.Time) string {
	return fmt.Sprintf("TX-%d", now.UnixMilli())
}

// NewPaidRecord starts a record for a confirmed payment.
func NewPaidRecord(id string, paidAt time.Time, storageConfigured bool) *Record {
	storage := StorageNotConfigured
	if storageConfigured {
		storage = StoragePending
	}
	return &Record{
		ID:            id,
		PaidAt:        paidAt.UTC(),
		Status:        StatusPaid,
		StorageStatus: storage,
	}
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	if r.UploadedAt != nil {
		t := *r.UploadedAt
		c.UploadedAt = &t
	}
	return &c
}

// HistoryRow flattens r in the history export column order.
func (r *Record) HistoryRow() []interface{} {
	uploaded := ""
	if r.UploadedAt != nil {
		uploaded = r.UploadedAt.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		r.ID,
		string(r.Status),
		r.StorageStatus,
		r.PaidAt.UTC().Format(time.RFC3339),
		uploaded,
		r.FileName,
		r.Artifacts.OriginalURL,
		r.Artifacts.CleanedCSVURL,
		r.Artifacts.CleanedExcelURL,
		r.Artifacts.DashboardPDFURL,
	}
}
