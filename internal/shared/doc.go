// Package shared holds helpers used across the insightdesk packages that do
// not belong to any single domain.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler for asserting on structured log output
//	- Upload fixtures (the demo sales CSV and a blank CSV)
//	- A multipart body builder for handler tests
//
// Example usage:
//
//	func TestUpload(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    body, ct := testutil.MultipartUpload(t, "file", "sales.csv", []byte(testutil.SalesCSV), nil)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// This package must not import business packages.
package shared
