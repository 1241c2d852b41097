package model

import "time"

// UploadedFile is a user upload stored inline in the database.  Size is
// capped at MaxFileSize before acceptance.  Rows past ExpiresAt are removed
// by the hourly purge job.
//
// Fields:
//  ID         – UUID assigned at upload time.
//  UploadedBy – user who uploaded the file.
//  Filename   – original client filename.
//  MimeType   – declared content type, served back on download.
//  Size       – payload size in bytes.
//  Data       – raw file bytes (omitted by listing queries).
//  ExpiresAt  – designated expiry consumed by the purge job.
//  CreatedAt  – upload timestamp.
type UploadedFile struct {
    ID         string    // uploaded_files.id
    UploadedBy string    // uploaded_files.uploaded_by
    Filename   string    // uploaded_files.filename
    MimeType   string    // uploaded_files.mime_type
    Size       int64     // uploaded_files.size
    Data       []byte    // uploaded_files.data
    ExpiresAt  time.Time // uploaded_files.expires_at
    CreatedAt  time.Time // uploaded_files.created_at
}

// MaxFileSize is the upload size cap (25 MiB), enforced before any row is
// written.
const MaxFileSize = 25 << 20
