// Package storage uploads analysis artifacts to a Supabase storage bucket
// through the storage-go SDK.
//
// Artifacts are written server-side with the service role key under a
// sanitized object path transactions/<id>/. Browsers get a signed upload
// URL for the same layout instead. The public URL of the object is what the
// transaction log records.
package storage
