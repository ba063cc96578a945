// Package postgres provides the cloud store backed by PostgreSQL via the pgx
// stdlib driver. Schema setup is handled by deployment migrations, not here.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

// isUniqueViolation reports whether err is a unique-constraint violation,
// which on inserts with caller-supplied IDs means a duplicate primary key.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Nurtures() store.Nurtures { return &nurtures{db: s.db} }
func (s *pgStore) Logs() store.Logs         { return &logs{db: s.db} }
func (s *pgStore) Acks() store.Acks         { return &acks{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Nurtures ---

type nurtures struct{ db *sql.DB }

func (n *nurtures) Create(ctx context.Context, m *model.Nurture) (*model.Nurture, error) {
	id := m.NurtureID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := n.db.QueryRowContext(ctx, `
        INSERT INTO nurtures (nurture_id, owner_id, name, type, species, breed, birth_date, avatar_ref)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time
    `, id, m.OwnerID, m.Name, string(m.Type), m.Species, m.Breed, m.BirthDate, m.AvatarRef)
	if err := row.Scan(&created); err != nil {
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
        FROM nurtures WHERE owner_id=$1 AND nurture_id=$2
    `, ownerID, nurtureID)
	return scanNurture(row)
}

func (n *nurtures) List(ctx context.Context, ownerID string) ([]*model.Nurture, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT nurture_id, owner_id, name, type, species, breed, birth_date, avatar_ref, creation_time
        FROM nurtures WHERE owner_id=$1 ORDER BY creation_time DESC
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
        UPDATE nurtures SET name=$1, species=$2, breed=$3, birth_date=$4, avatar_ref=$5
        WHERE owner_id=$6 AND nurture_id=$7
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_logs WHERE nurture_id=$1`, nurtureID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM nurtures WHERE owner_id=$1 AND nurture_id=$2`, ownerID, nurtureID)
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
	return &out, nil
}

// --- Logs ---

type logs struct{ db *sql.DB }

func (l *logs) Create(ctx context.Context, m *model.ActivityLog) (*model.ActivityLog, error) {
	id := m.LogID
	if id == "" {
		id = uuid.New().String()
	}
	var photos any
	if len(m.Photos) > 0 {
		b, err := json.Marshal(m.Photos)
		if err != nil {
			return nil, err
		}
		photos = b
	}
	var created time.Time
	row := l.db.QueryRowContext(ctx, `
        INSERT INTO activity_logs (log_id, nurture_id, raw_text, action, notes, mood, health_score, photos)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time
    `, id, m.NurtureID, m.RawText, m.Action, m.Notes, m.Mood, m.HealthScore, photos)
	if err := row.Scan(&created); err != nil {
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
        FROM activity_logs WHERE nurture_id=$1 AND log_id=$2
    `, nurtureID, logID)
	return scanLog(row)
}

func (l *logs) List(ctx context.Context, req model.ListLogsRequest) ([]*model.ActivityLog, error) {
	query := `SELECT log_id, nurture_id, creation_time, raw_text, action, notes, mood, health_score, photos
              FROM activity_logs WHERE nurture_id=$1`
	args := []any{req.NurtureID}
	if req.Since != nil {
		query += " AND creation_time >= $2"
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
	res, err := l.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE nurture_id=$1 AND log_id=$2`, nurtureID, logID)
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
        VALUES ($1,$2,$3,$4,$5)
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
        WHERE owner_id=$1 AND creation_time >= $2
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
