// Package storage keeps the bytes of task attachments.
//
// Two backends implement Blob: DiskBlob writes files under a local directory
// and GCSBlob writes objects to a Google Cloud Storage bucket. Both generate
// the stored name themselves and record a BLAKE3 checksum of the content
// while it streams through.
package storage
