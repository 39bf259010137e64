package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is idempotent; it runs on every start.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	password_hashed TEXT NOT NULL,
	gender          TEXT NOT NULL CHECK (gender IN ('male', 'female')),
	avatar_url      TEXT,
	avatar_key      TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS follows (
	follower_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	followee_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (follower_id, followee_id)
);
CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id);

CREATE TABLE IF NOT EXISTS posts (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	caption    TEXT NOT NULL DEFAULT '',
	media_url  TEXT NOT NULL,
	media_key  TEXT NOT NULL DEFAULT '',
	type       TEXT NOT NULL CHECK (type IN ('post', 'reel')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_posts_type_created ON posts(type, created_at DESC);

CREATE TABLE IF NOT EXISTS post_likes (
	post_id    BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (post_id, user_id)
);

CREATE TABLE IF NOT EXISTS post_comments (
	id          BIGSERIAL PRIMARY KEY,
	post_id     BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	author_name TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_post_comments_post ON post_comments(post_id, created_at);

CREATE TABLE IF NOT EXISTS chats (
	id               BIGSERIAL PRIMARY KEY,
	user_low         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	user_high        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	latest_text      TEXT,
	latest_sender_id BIGINT,
	latest_at        TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (user_low < user_high),
	UNIQUE (user_low, user_high)
);
CREATE INDEX IF NOT EXISTS idx_chats_user_high ON chats(user_high);

CREATE TABLE IF NOT EXISTS messages (
	id         BIGSERIAL PRIMARY KEY,
	chat_id    BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	sender_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	text       TEXT NOT NULL,
	seen       BOOLEAN NOT NULL DEFAULT FALSE,
	seen_at    TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_unseen ON messages(chat_id, sender_id) WHERE seen = FALSE;

CREATE TABLE IF NOT EXISTS notifications (
	id           BIGSERIAL PRIMARY KEY,
	recipient_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	sender_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type         TEXT NOT NULL CHECK (type IN ('follow', 'unfollow', 'like', 'comment', 'message')),
	message      TEXT NOT NULL,
	read         BOOLEAN NOT NULL DEFAULT FALSE,
	post_id      BIGINT REFERENCES posts(id) ON DELETE SET NULL,
	chat_id      BIGINT REFERENCES chats(id) ON DELETE SET NULL,
	message_id   BIGINT REFERENCES messages(id) ON DELETE SET NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_window ON notifications(recipient_id, sender_id, type, created_at DESC);

CREATE TABLE IF NOT EXISTS device_tokens (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token      TEXT NOT NULL UNIQUE,
	platform   TEXT NOT NULL DEFAULT 'expo',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
