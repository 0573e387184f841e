// Package journal records inert lifecycle events in an append-only SQLite
// log: which roots activated, which elements were restrained, and what state
// was captured for them. The journal observes, it is never read back by the
// engine — restoration works entirely from in-memory records.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/domfence/dbopen"
	"github.com/hazyhaar/domfence/idgen"
	"github.com/hazyhaar/domfence/inert"
)

const schema = `
CREATE TABLE IF NOT EXISTS inert_events (
	event_id       TEXT PRIMARY KEY,
	doc_id         TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	element_path   TEXT NOT NULL,
	element_tag    TEXT NOT NULL,
	saved_tabindex TEXT,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inert_events_doc ON inert_events(doc_id, created_at);
`

// Journal is an append-only store of inert lifecycle events.
type Journal struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) { j.logger = logger }
}

// WithIDGenerator sets a custom generator for event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(j *Journal) { j.newID = gen }
}

// Open creates or opens the journal database at path. ":memory:" works for
// tests.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	j := &Journal{
		db:     db,
		newID:  idgen.Prefixed("evt_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(j)
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Sink returns an inert.EventSink bound to a document ID. Sink failures are
// logged and never propagate: a failing journal must not stop the engine.
func (j *Journal) Sink(docID string) inert.EventSink {
	return inert.EventSinkFunc(func(ev inert.Event) {
		if err := j.record(docID, ev); err != nil {
			j.logger.Warn("journal: record failed", "doc_id", docID, "type", ev.Type, "error", err)
		}
	})
}

func (j *Journal) record(docID string, ev inert.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	var saved any
	if ev.SavedTabIndex != nil {
		saved = *ev.SavedTabIndex
	}
	_, err := j.db.Exec(`
		INSERT INTO inert_events (
			event_id, doc_id, event_type, element_path, element_tag,
			saved_tabindex, created_at
		) VALUES (?,?,?,?,?,?,?)`,
		j.newID(), docID, string(ev.Type), ev.Path, ev.Tag, saved, at.UnixMilli())
	return err
}

// StoredEvent is one journalled event as read back for inspection.
type StoredEvent struct {
	EventID       string    `json:"event_id"`
	DocID         string    `json:"doc_id"`
	Type          string    `json:"type"`
	Path          string    `json:"path"`
	Tag           string    `json:"tag"`
	SavedTabIndex *string   `json:"saved_tabindex,omitempty"`
	At            time.Time `json:"at"`
}

// Events returns the most recent events for a document, newest first.
// limit <= 0 means 100.
func (j *Journal) Events(ctx context.Context, docID string, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT event_id, doc_id, event_type, element_path, element_tag,
		       saved_tabindex, created_at
		FROM inert_events WHERE doc_id = ?
		ORDER BY created_at DESC, event_id DESC LIMIT ?`, docID, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		var at int64
		if err := rows.Scan(&ev.EventID, &ev.DocID, &ev.Type, &ev.Path, &ev.Tag, &ev.SavedTabIndex, &at); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}
		ev.At = time.UnixMilli(at)
		out = append(out, ev)
	}
	return out, rows.Err()
}
