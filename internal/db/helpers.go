package db

import (
	"context"
	"database/sql"
	"fmt"
)

// QueryRower is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// HasTable reports whether table exists in the current schema. Lookup errors
// count as missing.
func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

func HasColumn(ctx context.Context, q QueryRower, table, column string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND column_name = ?
		LIMIT 1
	`, table, column).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// Tables lists every table the service reads or writes.
var Tables = []string{"users", "itineraries"}

// RequiredColumns are the columns the repositories cannot work without, in
// check order. Tables created by an older schema may lack them.
var RequiredColumns = []struct{ Table, Column string }{
	{"users", "password_hash"},
	{"users", "role"},
	{"itineraries", "payload"},
}

// Readiness is the schema state of the connected database.
type Readiness struct {
	Tables         map[string]bool `json:"tables"`
	MissingColumns []string        `json:"missing_columns"`
	Ready          bool            `json:"ready"`
}

// Check looks up every table and required column. Columns of a missing table
// are not queried.
func Check(ctx context.Context, q QueryRower) Readiness {
	r := Readiness{Tables: make(map[string]bool, len(Tables)), MissingColumns: []string{}, Ready: true}
	for _, t := range Tables {
		ok := HasTable(ctx, q, t)
		r.Tables[t] = ok
		r.Ready = r.Ready && ok
	}
	for _, c := range RequiredColumns {
		if !r.Tables[c.Table] {
			continue
		}
		if !HasColumn(ctx, q, c.Table, c.Column) {
			r.MissingColumns = append(r.MissingColumns, c.Table+"."+c.Column)
			r.Ready = false
		}
	}
	return r
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(120) NOT NULL DEFAULT '',
		username VARCHAR(60) NOT NULL UNIQUE,
		email VARCHAR(190) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS itineraries (
		id CHAR(36) PRIMARY KEY,
		user_id BIGINT NOT NULL,
		origin VARCHAR(120) NOT NULL,
		destination VARCHAR(120) NOT NULL,
		departure_date CHAR(10) NOT NULL,
		return_date CHAR(10) NOT NULL,
		travelers INT NOT NULL,
		cost_weight DOUBLE NOT NULL,
		time_weight DOUBLE NOT NULL,
		total_cost DOUBLE NOT NULL,
		payload JSON NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_itineraries_user (user_id, created_at)
	)`,
}

// Migrate creates missing tables. Existing tables are left untouched.
func Migrate(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
