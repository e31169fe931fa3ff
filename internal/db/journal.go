package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/events"
)

// Journal records what happened on each switcher connection.
type Journal struct {
	db     *Database
	logger zerolog.Logger
	now    func() time.Time
}

// Connection is one handshake-to-disconnect span.
type Connection struct {
	ID        string     `json:"id"`
	Switcher  string     `json:"switcher"`
	Address   string     `json:"address"`
	State     string     `json:"state"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// StateChange is one journaled subtree value.
type StateChange struct {
	ID           int64           `json:"id"`
	ConnectionID string          `json:"connection_id"`
	Key          string          `json:"key"`
	Value        json.RawMessage `json:"value"`
	ChangedAt    time.Time       `json:"changed_at"`
}

// Alert is a failed health check.
type Alert struct {
	ID           int64     `json:"id"`
	Check        string    `json:"check"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewJournal opens the journal at dbPath and migrates its schema.
func NewJournal(dbPath string) (*Journal, error) {
	database, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	j := &Journal{
		db:     database,
		logger: log.With().Str("component", "journal").Logger(),
		now:    time.Now,
	}
	if err := j.migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return j, nil
}

// journalSchema lists the schema steps in order. Times are stored as unix
// milliseconds.
var journalSchema = []string{
	`
	CREATE TABLE connections (
		id TEXT PRIMARY KEY,
		switcher TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER
	);

	CREATE TABLE state_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		connection_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		changed_at INTEGER NOT NULL
	);

	CREATE TABLE commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		connection_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		sent_at INTEGER NOT NULL
	);

	CREATE TABLE alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		check_name TEXT NOT NULL,
		message TEXT NOT NULL,
		acknowledged INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX idx_state_changes_key ON state_changes(key);
	CREATE INDEX idx_state_changes_changed_at ON state_changes(changed_at);
	CREATE INDEX idx_commands_sent_at ON commands(sent_at);
	CREATE INDEX idx_alerts_acknowledged ON alerts(acknowledged);
	`,
}

func (j *Journal) migrate() error {
	return j.db.Migrate(journalSchema)
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.db.Path()
}

// Size returns the bytes the journal occupies on disk.
func (j *Journal) Size() (int64, error) {
	return j.db.Size()
}

// RecordConnection inserts the connection on first sight and tracks its
// state. Reaching Disconnected stamps the end time.
func (j *Journal) RecordConnection(switcher string, p events.ConnectionStatePayload) error {
	at := p.At
	if at.IsZero() {
		at = j.now()
	}
	return j.db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO connections (id, switcher, address, state, started_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET state = excluded.state`,
			p.ConnectionID, switcher, p.Address, p.State, at.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record connection: %w", err)
		}
		if p.State == "disconnected" {
			_, err = tx.Exec("UPDATE connections SET ended_at = ? WHERE id = ? AND ended_at IS NULL",
				at.UnixMilli(), p.ConnectionID)
		}
		return err
	})
}

// RecordStateChange journals one published subtree.
func (j *Journal) RecordStateChange(p events.StateChangedPayload) error {
	value, err := json.Marshal(p.Value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", p.Key, err)
	}
	at := p.At
	if at.IsZero() {
		at = j.now()
	}
	_, err = j.db.Exec(
		"INSERT INTO state_changes (connection_id, key, value, changed_at) VALUES (?, ?, ?, ?)",
		p.ConnectionID, p.Key, string(value), at.UnixMilli())
	return err
}

// RecordCommand journals an outbound command.
func (j *Journal) RecordCommand(p events.CommandSentPayload) error {
	_, err := j.db.Exec(
		"INSERT INTO commands (connection_id, tag, error, sent_at) VALUES (?, ?, ?, ?)",
		p.ConnectionID, p.Tag, p.Error, j.now().UnixMilli())
	return err
}

// RecordAlert stores a failed health check.
func (j *Journal) RecordAlert(check, message string) error {
	_, err := j.db.Exec(
		"INSERT INTO alerts (check_name, message, created_at) VALUES (?, ?, ?)",
		check, message, j.now().UnixMilli())
	return err
}

// Connections returns the most recent connections, newest first.
func (j *Journal) Connections(limit int) ([]Connection, error) {
	rows, err := j.db.Query(`
		SELECT id, switcher, address, state, started_at, ended_at
		FROM connections ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Connection
	for rows.Next() {
		var c Connection
		var started int64
		var ended sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Switcher, &c.Address, &c.State, &started, &ended); err != nil {
			return nil, err
		}
		c.StartedAt = time.UnixMilli(started).UTC()
		if ended.Valid {
			t := time.UnixMilli(ended.Int64).UTC()
			c.EndedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// History returns the latest changes of key, newest first. An empty key
// matches every key.
func (j *Journal) History(key string, limit int) ([]StateChange, error) {
	rows, err := j.db.Query(`
		SELECT id, connection_id, key, value, changed_at
		FROM state_changes
		WHERE (? = '' OR key = ?)
		ORDER BY id DESC LIMIT ?`, key, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StateChange
	for rows.Next() {
		var c StateChange
		var value string
		var at int64
		if err := rows.Scan(&c.ID, &c.ConnectionID, &c.Key, &value, &at); err != nil {
			return nil, err
		}
		c.Value = json.RawMessage(value)
		c.ChangedAt = time.UnixMilli(at).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// UnacknowledgedAlerts returns open alerts, oldest first.
func (j *Journal) UnacknowledgedAlerts() ([]Alert, error) {
	rows, err := j.db.Query(
		"SELECT id, check_name, message, created_at FROM alerts WHERE acknowledged = 0 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var a Alert
		var at int64
		if err := rows.Scan(&a.ID, &a.Check, &a.Message, &at); err != nil {
			return nil, err
		}
		a.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// AcknowledgeAlert marks an alert as handled.
func (j *Journal) AcknowledgeAlert(id int64) error {
	res, err := j.db.Exec("UPDATE alerts SET acknowledged = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %d not found", id)
	}
	return nil
}

// Count returns the number of journaled state changes.
func (j *Journal) Count() (int64, error) {
	var n int64
	err := j.db.QueryRow("SELECT COUNT(*) FROM state_changes").Scan(&n)
	return n, err
}

// Prune deletes rows older than before, then trims state changes to the
// newest maxRows. A maxRows of zero disables the row cap.
func (j *Journal) Prune(before time.Time, maxRows int) (int64, error) {
	var removed int64
	cutoff := before.UnixMilli()

	err := j.db.Transaction(func(tx *sql.Tx) error {
		stmts := []string{
			"DELETE FROM state_changes WHERE changed_at < ?",
			"DELETE FROM commands WHERE sent_at < ?",
			"DELETE FROM alerts WHERE acknowledged = 1 AND created_at < ?",
			"DELETE FROM connections WHERE ended_at IS NOT NULL AND ended_at < ?",
		}
		for _, stmt := range stmts {
			res, err := tx.Exec(stmt, cutoff)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			removed += n
		}

		if maxRows > 0 {
			res, err := tx.Exec(`
				DELETE FROM state_changes WHERE id <= (
					SELECT id FROM state_changes ORDER BY id DESC LIMIT 1 OFFSET ?
				)`, maxRows)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("journal prune failed: %w", err)
	}

	j.logger.Info().
		Int64("removed", removed).
		Time("before", before).
		Msg("journal pruned")
	return removed, nil
}

// Subscribe journals state, connection, command and health events from bus.
func (j *Journal) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventStateChanged, "journal", func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.StateChangedPayload); ok {
			return j.RecordStateChange(p)
		}
		return nil
	})
	bus.Subscribe(events.EventConnectionState, "journal", func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.ConnectionStatePayload); ok {
			return j.RecordConnection(e.Source, p)
		}
		return nil
	})
	bus.Subscribe(events.EventCommandSent, "journal", func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.CommandSentPayload); ok {
			return j.RecordCommand(p)
		}
		return nil
	})
	bus.Subscribe(events.EventHealth, "journal", func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.HealthPayload); ok && !p.Healthy {
			return j.RecordAlert(p.Check, p.Message)
		}
		return nil
	})
}
