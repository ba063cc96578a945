// Package sqlite provides the local single-file store used in development and
// self-hosted deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "modernc.org/sqlite"

	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

const ddl = `
CREATE TABLE IF NOT EXISTS nurtures (
    nurture_id    TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    name          TEXT NOT NULL,
    type          TEXT NOT NULL,
    species       TEXT,
    breed         TEXT,
    birth_date    TIMESTAMP,
    avatar_ref    TEXT,
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nurtures_owner ON nurtures(owner_id);

CREATE TABLE IF NOT EXISTS activity_logs (
    log_id        TEXT PRIMARY KEY,
    nurture_id    TEXT NOT NULL,
    creation_time TIMESTAMP NOT NULL,
    raw_text      TEXT NOT NULL,
    action        TEXT,
    notes         TEXT,
    mood          TEXT,
    health_score  REAL,
    photos        TEXT
);
CREATE INDEX IF NOT EXISTS idx_logs_nurture_time ON activity_logs(nurture_id, creation_time);

CREATE TABLE IF NOT EXISTS acknowledgements (
    ack_id        TEXT PRIMARY KEY,
    alert_id      TEXT NOT NULL,
    owner_id      TEXT NOT NULL,
    action        TEXT NOT NULL,
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_acks_owner_time ON acknowledgements(owner_id, creation_time);
`

// Open opens (and if necessary creates) the SQLite database at path and
// applies the schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writes; a single connection avoids SQLITE_BUSY
	// under concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// NewWithDB constructs a SQLite-backed store over an opened database.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

// isUniqueViolation reports whether err is a constraint violation, which on
// inserts with caller-supplied IDs means a duplicate primary key.
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	// Low byte is the primary result code; 19 is SQLITE_CONSTRAINT.
	return errors.As(err, &se) && se.Code()&0xff == 19
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Nurtures() store.Nurtures { return &nurtures{db: s.db} }
func (s *sqliteStore) Logs() store.Logs         { return &logs{db: s.db} }
func (s *sqliteStore) Acks() store.Acks         { return &acks{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Nurtures ---

type nurtures struct{ db *sql.DB }

func (n *nurtures) Create(ctx context.Context, m *model.Nurture) (*model.Nurture, error) {
	id := m.NurtureID
	if id == "" {
		id = uuid.New().String()
	}
	created := m.CreationTime
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := n.db.ExecContext(ctx, `
        INSERT INTO nurtures (nurture_id, owner_id, name, type, species, breed, birth_date, avatar_ref, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, id, m.OwnerID, m.Name, string(m.Type), m.Species, m.Breed, m.BirthDate, m.AvatarRef, created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewConflictError("nurtureId", id)
		}
		return nil, err
	}
	out := *m
	out.NurtureID = id
	out.CreationTime = created
	return &out, nil
}

func (n *nurtures) Get(ctx context.Context, ownerID, nurtureID string) (*model.Nurture, error) {
	row := n.db.QueryRowContext(ctx, `
        SELECT nurture_id, owner_id, name, type, species, breed, birth_date, avatar_ref, creation_time
        FROM nurtures WHERE owner_id=? AND nurture_id=?
    `, ownerID, nurtureID)
	return scanNurture(row)
}

func (n *nurtures) List(ctx context.Context, ownerID string) ([]*model.Nurture, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT nurture_id, owner_id, name, type, species, breed, birth_date, avatar_ref, creation_time
        FROM nurtures WHERE owner_id=? ORDER BY creation_time DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Nurture
	for rows.Next() {
		m, err := scanNurture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (n *nurtures) Update(ctx context.Context, m *model.Nurture) (*model.Nurture, error) {
	res, err := n.db.ExecContext(ctx, `
        UPDATE nurtures SET name=?, species=?, breed=?, birth_date=?, avatar_ref=?
        WHERE owner_id=? AND nurture_id=?
    `, m.Name, m.Species, m.Breed, m.BirthDate, m.AvatarRef, m.OwnerID, m.NurtureID)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, model.NewNotFoundError("nurtureId", m.NurtureID)
	}
	return n.Get(ctx, m.OwnerID, m.NurtureID)
}

func (n *nurtures) Delete(ctx context.Context, ownerID, nurtureID string) error {
	tx, err := n.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_logs WHERE nurture_id=?`, nurtureID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM nurtures WHERE owner_id=? AND nurture_id=?`, ownerID, nurtureID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return model.NewNotFoundError("nurtureId", nurtureID)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNurture(row rowScanner) (*model.Nurture, error) {
	var out model.Nurture
	var typ string
	var species, breed, avatar sql.NullString
	var birth sql.NullTime
	if err := row.Scan(&out.NurtureID, &out.OwnerID, &out.Name, &typ, &species, &breed, &birth, &avatar, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("nurtureId", "nurture does not exist")
		}
		return nil, err
	}
	out.Type = model.NurtureType(typ)
	if species.Valid {
		out.Species = &species.String
	}
	if breed.Valid {
		out.Breed = &breed.String
	}
	if birth.Valid {
		t := birth.Time.UTC()
		out.BirthDate = &t
	}
	if avatar.Valid {
		out.AvatarRef = &avatar.String
	}
	out.CreationTime = out.CreationTime.UTC()
	return &out, nil
}

// --- Logs ---

type logs struct{ db *sql.DB }

func (l *logs) Create(ctx context.Context, m *model.ActivityLog) (*model.ActivityLog, error) {
	id := m.LogID
	if id == "" {
		id = uuid.New().String()
	}
	created := m.CreationTime
	if created.IsZero() {
		created = time.Now().UTC()
	}
	var photos any
	if len(m.Photos) > 0 {
		b, err := json.Marshal(m.Photos)
		if err != nil {
			return nil, err
		}
		photos = string(b)
	}
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO activity_logs (log_id, nurture_id, creation_time, raw_text, action, notes, mood, health_score, photos)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, id, m.NurtureID, created, m.RawText, m.Action, m.Notes, m.Mood, m.HealthScore, photos)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewConflictError("logId", id)
		}
		return nil, err
	}
	out := *m
	out.LogID = id
	out.CreationTime = created
	return &out, nil
}

func (l *logs) Get(ctx context.Context, nurtureID, logID string) (*model.ActivityLog, error) {
	row := l.db.QueryRowContext(ctx, `
        SELECT log_id, nurture_id, creation_time, raw_text, action, notes, mood, health_score, photos
        FROM activity_logs WHERE nurture_id=? AND log_id=?
    `, nurtureID, logID)
	return scanLog(row)
}

func (l *logs) List(ctx context.Context, req model.ListLogsRequest) ([]*model.ActivityLog, error) {
	query := `SELECT log_id, nurture_id, creation_time, raw_text, action, notes, mood, health_score, photos
              FROM activity_logs WHERE nurture_id=?`
	args := []any{req.NurtureID}
	if req.Since != nil {
		query += " AND creation_time >= ?"
		args = append(args, *req.Since)
	}
	query += " ORDER BY creation_time DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", req.Limit)
	}
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ActivityLog
	for rows.Next() {
		m, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (l *logs) Delete(ctx context.Context, nurtureID, logID string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE nurture_id=? AND log_id=?`, nurtureID, logID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return model.NewNotFoundError("logId", logID)
	}
	return nil
}

func scanLog(row rowScanner) (*model.ActivityLog, error) {
	var out model.ActivityLog
	var action, notes, mood, photos sql.NullString
	var score sql.NullFloat64
	if err := row.Scan(&out.LogID, &out.NurtureID, &out.CreationTime, &out.RawText, &action, &notes, &mood, &score, &photos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("logId", "log does not exist")
		}
		return nil, err
	}
	if action.Valid {
		out.Action = &action.String
	}
	if notes.Valid {
		out.Notes = &notes.String
	}
	if mood.Valid {
		out.Mood = &mood.String
	}
	if score.Valid {
		out.HealthScore = &score.Float64
	}
	if photos.Valid && photos.String != "" {
		_ = json.Unmarshal([]byte(photos.String), &out.Photos)
	}
	out.CreationTime = out.CreationTime.UTC()
	return &out, nil
}

// --- Acks ---

type acks struct{ db *sql.DB }

func (a *acks) Append(ctx context.Context, m *model.Acknowledgement) (*model.Acknowledgement, error) {
	created := m.CreationTime
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO acknowledgements (ack_id, alert_id, owner_id, action, creation_time)
        VALUES (?,?,?,?,?)
    `, uuid.New().String(), m.AlertID, m.OwnerID, string(m.Action), created)
	if err != nil {
		return nil, err
	}
	out := *m
	out.CreationTime = created
	return &out, nil
}

func (a *acks) ActiveIDs(ctx context.Context, ownerID string, since time.Time) (map[string]bool, error) {
	rows, err := a.db.QueryContext(ctx, `
        SELECT DISTINCT alert_id FROM acknowledgements
        WHERE owner_id=? AND creation_time >= ?
    `, ownerID, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
