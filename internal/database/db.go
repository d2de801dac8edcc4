package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds one CREATE TABLE IF NOT EXISTS statement per table.  Applied
// on startup so a fresh database is usable without a separate migration
// step.  Entity tables use CHAR(36) UUID keys; users keep an auto-increment
// id because it is the JWT subject.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		full_name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('user','staff','admin') NOT NULL DEFAULT 'user',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		INDEX idx_refresh_hash (token_hash),
		INDEX idx_refresh_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id CHAR(36) NOT NULL PRIMARY KEY,
		requester_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(500) NOT NULL,
		description TEXT NOT NULL,
		type VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		assignee_id BIGINT UNSIGNED NULL,
		priority VARCHAR(16) NOT NULL DEFAULT 'medium',
		incident_date VARCHAR(64) NOT NULL DEFAULT '',
		incident_location VARCHAR(500) NOT NULL DEFAULT '',
		case_number VARCHAR(128) NOT NULL DEFAULT '',
		officer_names VARCHAR(500) NOT NULL DEFAULT '',
		vehicle_info VARCHAR(500) NOT NULL DEFAULT '',
		additional_details TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_requests_requester (requester_id),
		INDEX idx_requests_assignee (assignee_id),
		INDEX idx_requests_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id CHAR(36) NOT NULL PRIMARY KEY,
		request_id CHAR(36) NOT NULL,
		sender_id BIGINT UNSIGNED NOT NULL,
		sender_name VARCHAR(255) NOT NULL,
		sender_role VARCHAR(16) NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_messages_request (request_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id CHAR(36) NOT NULL PRIMARY KEY,
		recipient_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		body TEXT NOT NULL,
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		INDEX idx_notifications_recipient (recipient_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS email_templates (
		id CHAR(36) NOT NULL PRIMARY KEY,
		kind VARCHAR(32) NOT NULL UNIQUE,
		subject VARCHAR(500) NOT NULL,
		body TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
}

// Migrate applies the embedded schema statements in order.
func Migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
