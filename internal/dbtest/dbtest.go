// Package dbtest opens isolated in-memory SQLite databases carrying the
// application schema for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
)

// schema mirrors pkg/migrate/migrations using SQLite types. Array columns are
// stored as their Postgres text form through pq.StringArray.
var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone TEXT,
		location TEXT,
		bio TEXT,
		avatar_url TEXT,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE "groups" (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		type TEXT NOT NULL,
		category TEXT NOT NULL,
		privacy TEXT NOT NULL,
		cover_image_url TEXT,
		location TEXT,
		rules TEXT,
		tags TEXT,
		created_by TEXT NOT NULL,
		require_approval BOOLEAN NOT NULL,
		allow_member_posts BOOLEAN NOT NULL,
		max_members_limit INTEGER NOT NULL,
		member_count INTEGER NOT NULL,
		total_posts INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE group_members (
		group_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		joined_at DATETIME,
		updated_at DATETIME,
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE pets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		breed TEXT,
		age INTEGER NOT NULL,
		size TEXT NOT NULL,
		gender TEXT NOT NULL,
		description TEXT NOT NULL,
		images TEXT,
		location TEXT NOT NULL,
		vaccinated BOOLEAN NOT NULL,
		neutered BOOLEAN NOT NULL,
		adoption_fee NUMERIC NOT NULL,
		origin_type TEXT NOT NULL,
		status TEXT NOT NULL,
		posted_by TEXT NOT NULL,
		adopted_by TEXT,
		adopted_at DATETIME,
		views INTEGER NOT NULL,
		likes_count INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE pet_likes (
		pet_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME,
		PRIMARY KEY (pet_id, user_id)
	)`,
	`CREATE TABLE pet_reports (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL,
		reporter_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		details TEXT,
		status TEXT NOT NULL,
		resolved_by TEXT,
		resolved_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE group_posts (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT,
		content TEXT NOT NULL,
		images TEXT,
		pet_id TEXT,
		status TEXT NOT NULL,
		visibility TEXT NOT NULL,
		is_pinned BOOLEAN NOT NULL,
		likes_count INTEGER NOT NULL,
		comments_count INTEGER NOT NULL,
		shares_count INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE post_likes (
		post_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME,
		PRIMARY KEY (post_id, user_id)
	)`,
	`CREATE TABLE post_shares (
		post_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME,
		PRIMARY KEY (post_id, user_id)
	)`,
	`CREATE TABLE post_comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE comment_replies (
		id TEXT PRIMARY KEY,
		comment_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME
	)`,
}

// Open returns a fresh database with the schema applied. Each call gets its
// own named in-memory database, closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// Client wraps Open in the db.Client used by services.
func Client(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.Wrap(conn), conn
}
