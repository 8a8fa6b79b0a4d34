// Package database owns the MySQL connection pool for the API.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open builds the pool and verifies connectivity before the server starts
// taking traffic. Every handler query runs under a 5s context deadline, so
// the driver-level timeouts in the DSN sit just above that.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", buildDSN(user, pass, host, port, name))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// Sized for a single API instance: the chat endpoint fans out to a
	// handful of queries per message, everything else is one-query CRUD.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// buildDSN assembles the driver DSN. parseTime scans DATETIME columns into
// time.Time, and loc=UTC matches the UTC timestamps the repositories write;
// appointment windows would silently shift otherwise.
func buildDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = user + ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&timeout=5s&readTimeout=10s&writeTimeout=10s",
		auth, host, port, name)
}
