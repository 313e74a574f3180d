package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Repository is the persistence boundary for training sessions.
type Repository interface {
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListSessions(ctx context.Context, filter ListFilter) ([]Session, error)
	CreateSession(ctx context.Context, s Session) (int64, error)
	UpdateSession(ctx context.Context, s Session) error
	DeleteSession(ctx context.Context, id int64) error

	AddEnrollment(ctx context.Context, e Enrollment) error
	ListEnrollments(ctx context.Context, sessionID int64) ([]Enrollment, error)
	CountEnrollments(ctx context.Context, sessionID int64) (int, error)

	GetDocument(ctx context.Context, id int64) (*Document, error)
	ListDocuments(ctx context.Context, sessionID int64) ([]Document, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const sessionColumns = `
	s.id, s.title, s.expert_id, u.name AS expert_name,
	s.location, s.scheduled_at, s.capacity, s.created_at, s.updated_at
`

func (r *repository) GetSession(ctx context.Context, id int64) (*Session, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM training_sessions s
		JOIN users u ON u.id = s.expert_id
		WHERE s.id = $1`, sessionColumns), id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) ListSessions(ctx context.Context, filter ListFilter) ([]Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM training_sessions s
		JOIN users u ON u.id = s.expert_id`, sessionColumns)
	var args []any
	var where []string
	if filter.ExpertID != nil {
		args = append(args, *filter.ExpertID)
		where = append(where, fmt.Sprintf("s.expert_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("s.scheduled_at >= $%d", len(args)))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += ` ORDER BY s.scheduled_at, s.id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *repository) CreateSession(ctx context.Context, s Session) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO training_sessions (title, expert_id, location, scheduled_at, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id`,
		s.Title, s.ExpertID, s.Location, s.ScheduledAt, s.Capacity).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateSession(ctx context.Context, s Session) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE training_sessions
		SET title = $2, expert_id = $3, location = $4, scheduled_at = $5, capacity = $6, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Title, s.ExpertID, s.Location, s.ScheduledAt, s.Capacity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteSession(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM training_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AddEnrollment(ctx context.Context, e Enrollment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO training_enrollments (session_id, customer_id, added_by, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, customer_id) DO NOTHING`,
		e.SessionID, e.CustomerID, e.AddedBy)
	return err
}

func (r *repository) ListEnrollments(ctx context.Context, sessionID int64) ([]Enrollment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT session_id, customer_id, added_by, created_at
		FROM training_enrollments
		WHERE session_id = $1
		ORDER BY created_at, customer_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.SessionID, &e.CustomerID, &e.AddedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) CountEnrollments(ctx context.Context, sessionID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM training_enrollments WHERE session_id = $1`, sessionID).Scan(&count)
	return count, err
}

func (r *repository) GetDocument(ctx context.Context, id int64) (*Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, session_id, filename, content_type, size_bytes, storage_key, uploaded_by, created_at
		FROM training_documents
		WHERE id = $1`, id)
	var d Document
	err := row.Scan(&d.ID, &d.SessionID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.StorageKey, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDocuments(ctx context.Context, sessionID int64) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, filename, content_type, size_bytes, storage_key, uploaded_by, created_at
		FROM training_documents
		WHERE session_id = $1
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.StorageKey, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.Title, &s.ExpertID, &s.ExpertName,
		&s.Location, &s.ScheduledAt, &s.Capacity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
