package testutil

import (
	"bytes"
	"mime/multipart"
	"testing"
)

// SalesCSV mirrors the built-in demo dataset as an uploaded CSV file.
const SalesCSV = `Date,Region,Sales,Cost,Units,Status
2025-01-01,North America Enterprise,1200,760,40,Won
2025-02-01,North America Enterprise,1450,840,45,Won
2025-03-01,Europe Mid-Market,1320,,38,Lost
2025-04-01,Asia Pacific Enterprise,1725,930,56,Won
2025-05-01,Latin America Emerging,,905,49,Pending
2025-06-01,North America Enterprise,4580,995,210,Won
`

// BlankCSV has a header and nothing but empty rows.
const BlankCSV = "A,B\n,\n,\n"

// MultipartUpload builds a multipart body carrying one file plus plain form
// fields. It returns the body and its Content-Type header value.
func MultipartUpload(t testing.TB, field, fileName string, data []byte, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if field != "" {
		part, err := w.CreateFormFile(field, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}
