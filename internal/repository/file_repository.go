package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/brotherhood/platform/internal/model"
)

type FileRepo struct{ DB *sql.DB }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{DB: db} }

// Create stores an upload and returns its generated id.  The expiry is set
// by the caller; expired rows are removed by the purge job.
func (r *FileRepo) Create(ctx context.Context, uploadedBy, filename, mimeType string, data []byte, expiresAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO uploaded_files (id, uploaded_by, filename, mime_type, size, data, expires_at)
		 VALUES (?,?,?,?,?,?,?)`,
		id, uploadedBy, filename, mimeType, len(data), data, expiresAt.UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get fetches an upload including its payload.
func (r *FileRepo) Get(ctx context.Context, id string) (model.UploadedFile, error) {
	var f model.UploadedFile
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, uploaded_by, filename, mime_type, size, data, expires_at, created_at
		 FROM uploaded_files WHERE id=? LIMIT 1`, id).
		Scan(&f.ID, &f.UploadedBy, &f.Filename, &f.MimeType, &f.Size, &f.Data, &f.ExpiresAt, &f.CreatedAt)
	return f, err
}

// GetMeta fetches an upload's metadata without the payload.  Used by the
// deletion path, which only needs the uploader for the policy check.
func (r *FileRepo) GetMeta(ctx context.Context, id string) (model.UploadedFile, error) {
	var f model.UploadedFile
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, uploaded_by, filename, mime_type, size, expires_at, created_at
		 FROM uploaded_files WHERE id=? LIMIT 1`, id).
		Scan(&f.ID, &f.UploadedBy, &f.Filename, &f.MimeType, &f.Size, &f.ExpiresAt, &f.CreatedAt)
	return f, err
}

// Delete removes a single upload.  Returns sql.ErrNoRows when it does not
// exist.
func (r *FileRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM uploaded_files WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PurgeExpired deletes every upload whose expiry lies at or before now.
func (r *FileRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM uploaded_files WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
