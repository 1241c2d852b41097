package repository

import (
	"context"
	"database/sql"
)

type SettingRepo struct{ DB *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{DB: db} }

// Get returns the value stored under key.  A missing key yields an empty
// string and no error; callers treat unset settings as "not configured".
func (r *SettingRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.DB.QueryRowContext(ctx,
		"SELECT value FROM app_settings WHERE `key`=? LIMIT 1", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// Set upserts a single key/value pair.
func (r *SettingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO app_settings (`key`, value) VALUES (?,?) ON DUPLICATE KEY UPDATE value=VALUES(value)",
		key, value)
	return err
}
