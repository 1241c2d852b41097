package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/brotherhood/platform/internal/identity"
	"github.com/brotherhood/platform/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Sync writes the user row for a resolved identity and returns the stored
// record.  Display name, avatar and the owner flag are refreshed on every
// call so a removed allow-list email loses the owner flag on its next
// request.  Admin access and role are never touched here; they are granted
// through their own endpoints.
//
// The write branches on row existence instead of using ON DUPLICATE KEY
// UPDATE: users has two unique keys (id and email), so a single upsert
// statement would resolve an email collision by updating the OTHER user's
// row.  With the explicit branch the only way to hit the email constraint
// is a genuine collision, which surfaces as ErrEmailExists.
func (r *UserRepo) Sync(ctx context.Context, id identity.Identity, isOwner bool) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))

	var existing string
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE id=? LIMIT 1", id.Subject).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = r.DB.ExecContext(ctx,
			`INSERT INTO users (id, email, name, avatar_url, is_owner)
			 VALUES (?,?,?,?,?)`,
			id.Subject, email, id.Name, id.AvatarURL, isOwner)
	case err != nil:
		return model.User{}, err
	default:
		_, err = r.DB.ExecContext(ctx,
			"UPDATE users SET email=?, name=?, avatar_url=?, is_owner=? WHERE id=?",
			email, id.Name, id.AvatarURL, isOwner, id.Subject)
	}
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id.Subject)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	var role sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, name, avatar_url, is_owner, has_admin_access, role, created_at
		 FROM users WHERE id=? LIMIT 1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsOwner, &u.HasAdminAccess, &role, &u.CreatedAt)
	u.Role = role.String
	return u, err
}

// List returns all users ordered by display name.  Used by role management
// and for picking a direct-message partner.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, email, name, avatar_url, is_owner, has_admin_access, role, created_at
		 FROM users ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var role sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsOwner, &u.HasAdminAccess, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = role.String
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetAdminAccess flips the has_admin_access flag for a user.
func (r *UserRepo) SetAdminAccess(ctx context.Context, id string, granted bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET has_admin_access=? WHERE id=?", granted, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Also hit when the flag already holds the requested value; treat
		// the update as idempotent and only fail when the row is missing.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetRole assigns a named rank to a user.  An empty role clears the rank
// (stored as NULL).
func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	var v interface{}
	if role != "" {
		v = role
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", v, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
