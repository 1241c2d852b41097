package database

// schema.go creates the tables the application needs on startup.  The
// statements are idempotent (CREATE TABLE IF NOT EXISTS) so repeated boots
// are safe.  Two constraints are load-bearing and must live in the schema
// rather than application code: the composite (post_id, user_id) primary
// key on likes, which makes the losing writer of a concurrent like toggle
// fail cleanly instead of inserting a duplicate, and the ON DELETE CASCADE
// foreign keys that remove a post's comments and likes together with the
// post.

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          VARCHAR(128) NOT NULL,
		email       VARCHAR(255) NOT NULL,
		name        VARCHAR(255) NOT NULL DEFAULT '',
		avatar_url  VARCHAR(512) NOT NULL DEFAULT '',
		is_owner    TINYINT(1)   NOT NULL DEFAULT 0,
		has_admin_access TINYINT(1) NOT NULL DEFAULT 0,
		role        VARCHAR(32)  NULL,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS posts (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		author_id     VARCHAR(128) NOT NULL,
		title         VARCHAR(255) NOT NULL DEFAULT '',
		content       TEXT         NOT NULL,
		is_admin_post TINYINT(1)   NOT NULL DEFAULT 0,
		file_ids      TEXT         NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_posts_created (is_admin_post, created_at),
		CONSTRAINT fk_posts_author FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		post_id    BIGINT UNSIGNED NOT NULL,
		author_id  VARCHAR(128) NOT NULL,
		content    TEXT         NOT NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_comments_post (post_id),
		CONSTRAINT fk_comments_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
		CONSTRAINT fk_comments_author FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS likes (
		post_id    BIGINT UNSIGNED NOT NULL,
		user_id    VARCHAR(128) NOT NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (post_id, user_id),
		CONSTRAINT fk_likes_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
		CONSTRAINT fk_likes_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		author_id  VARCHAR(128) NOT NULL,
		content    TEXT         NOT NULL,
		file_ids   TEXT         NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_chat_created (created_at),
		CONSTRAINT fk_chat_author FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS direct_messages (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		sender_id    VARCHAR(128) NOT NULL,
		recipient_id VARCHAR(128) NOT NULL,
		content      TEXT         NOT NULL,
		created_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_dm_pair (sender_id, recipient_id, created_at),
		CONSTRAINT fk_dm_sender FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_dm_recipient FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS app_settings (
		` + "`key`" + `       VARCHAR(64)  NOT NULL,
		value       TEXT         NOT NULL,
		updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (` + "`key`" + `)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS uploaded_files (
		id          VARCHAR(36)  NOT NULL,
		uploaded_by VARCHAR(128) NOT NULL,
		filename    VARCHAR(255) NOT NULL,
		mime_type   VARCHAR(128) NOT NULL,
		size        BIGINT       NOT NULL,
		data        LONGBLOB     NOT NULL,
		expires_at  DATETIME     NOT NULL,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_files_expiry (expires_at),
		CONSTRAINT fk_files_user FOREIGN KEY (uploaded_by) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema runs the CREATE TABLE statements in order.  Parent tables
// come before children so the foreign keys resolve.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
