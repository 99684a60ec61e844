package audit

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultLimit and MaxLimit bound Recent.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

func insertQuery(events []Event) sq.InsertBuilder {
	q := psql.Insert("audit_events").Columns(
		"action", "resource_type", "resource_id", "actor_id",
		"actor_email", "request_id", "client_ip", "created_at",
	)
	for _, e := range events {
		q = q.Values(e.Action, e.ResourceType, e.ResourceID, e.ActorID,
			e.ActorEmail, e.RequestID, e.ClientIP, e.CreatedAt)
	}
	return q
}

// BatchInsert writes events in a single multi-row INSERT. No-op when empty.
func (s *Store) BatchInsert(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	query, args, err := insertQuery(events).ToSql()
	if err != nil {
		return fmt.Errorf("building audit insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("batch inserting audit events: %w", err)
	}
	return nil
}

// ClampLimit maps a requested page size onto [1, MaxLimit], using
// DefaultLimit for anything unparsable or non-positive.
func ClampLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func recentQuery(limit int) sq.SelectBuilder {
	return psql.Select(
		"id", "action", "resource_type", "resource_id", "actor_id",
		"actor_email", "request_id", "client_ip", "created_at",
	).From("audit_events").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
}

// Recent returns the newest events first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	query, args, err := recentQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building audit query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Action, &e.ResourceType, &e.ResourceID, &e.ActorID,
			&e.ActorEmail, &e.RequestID, &e.ClientIP, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit events: %w", err)
	}
	return events, nil
}
