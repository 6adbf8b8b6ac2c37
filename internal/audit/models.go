package audit

import "time"

// Event is an immutable, append-only record of one support interaction.
//
// Invariants:
// - Events are never updated or deleted.
// - Recording is best-effort; responses are never blocked on audit failures.
//
// Storage (Postgres):
// - Table support_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// RequestID ties the event back to the request log line.
	RequestID string `json:"request_id,omitempty" db:"request_id"`

	// Intent is the classified category for the query.
	Intent string `json:"intent" db:"intent"`

	// IdentifierKind is order_id, phone or none.
	IdentifierKind string `json:"identifier_kind" db:"identifier_kind"`
	Identifier     string `json:"identifier,omitempty" db:"identifier"`

	// Outcome is the enrichment outcome (found, not_found, error) or
	// "generated"/"menu" for branches that never perform a lookup.
	Outcome string `json:"outcome" db:"outcome"`

	// HTTPStatus is the status served to the client.
	HTTPStatus int `json:"http_status" db:"http_status"`

	// Query is the user text, truncated; kept for internal diagnosis only.
	Query string `json:"query,omitempty" db:"query"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
