package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists support events via database/sql (pgx stdlib driver).
//
// Schema:
//
//	CREATE TABLE support_events (
//	    id              uuid PRIMARY KEY,
//	    request_id      text NOT NULL DEFAULT '',
//	    intent          text NOT NULL,
//	    identifier_kind text NOT NULL,
//	    identifier      text NOT NULL DEFAULT '',
//	    outcome         text NOT NULL,
//	    http_status     int  NOT NULL,
//	    query           text NOT NULL DEFAULT '',
//	    created_at      timestamptz NOT NULL
//	);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
		INSERT INTO support_events
			(id, request_id, intent, identifier_kind, identifier, outcome, http_status, query, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.RequestID, e.Intent, e.IdentifierKind, e.Identifier, e.Outcome, e.HTTPStatus, e.Query, e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	const q = `
		SELECT id, request_id, intent, identifier_kind, identifier, outcome, http_status, query, created_at
		FROM support_events
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.Intent, &e.IdentifierKind, &e.Identifier,
			&e.Outcome, &e.HTTPStatus, &e.Query, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
