package database

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.  When ssl is
// true and the URL does not pin an sslmode, sslmode=require is added.
func Open(databaseURL string, ssl bool) (*sql.DB, error) {
	dsn := withSSLMode(databaseURL, ssl)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withSSLMode sets sslmode on URL-style DSNs.  Key/value DSNs are returned
// unchanged.
func withSSLMode(dsn string, ssl bool) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	q := u.Query()
	if q.Get("sslmode") != "" {
		return dsn
	}
	if ssl {
		q.Set("sslmode", "require")
	} else {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
