package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resume-review/internal/shared/storage/db"
	"resume-review/internal/shared/util"
)

// SQLStore persists entries in the kv_records table on postgres or sqlite.
type SQLStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

// Ping verifies the connection is alive.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, s.rebind(`
		SELECT record_value FROM kv_records
		WHERE owner_key = ? AND record_key = ?
	`), util.OwnerKey(owner), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, owner, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO kv_records (owner_key, record_key, record_value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_key, record_key)
		DO UPDATE SET record_value = excluded.record_value, updated_at = excluded.updated_at
	`), util.OwnerKey(owner), key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, owner, pattern string, includeValues bool) ([]Item, error) {
	column := "''"
	if includeValues {
		column = "record_value"
	}
	rows, err := s.DB.QueryContext(ctx, s.rebind(`
		SELECT record_key, `+column+` FROM kv_records
		WHERE owner_key = ? AND record_key LIKE ? ESCAPE '\'
		ORDER BY record_key
	`), util.OwnerKey(owner), globToLike(pattern))
	if err != nil {
		return nil, fmt.Errorf("kv list %s: %w", pattern, err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Key, &item.Value); err != nil {
			return nil, fmt.Errorf("kv list scan: %w", err)
		}
		// sqlite LIKE folds ASCII case
		if !Match(pattern, item.Key) {
			continue
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv list rows: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Flush(ctx context.Context, owner string) error {
	if _, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM kv_records WHERE owner_key = ?`), util.OwnerKey(owner)); err != nil {
		return fmt.Errorf("kv flush: %w", err)
	}
	return nil
}

// rebind rewrites '?' placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.Dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// globToLike converts a '*' glob to a LIKE pattern escaped with backslash.
func globToLike(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '\\', '%', '_':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '*':
			b.WriteRune('%')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ Store = (*SQLStore)(nil)
