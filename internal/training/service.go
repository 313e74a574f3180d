package training

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// ErrForbidden marks an operation the actor may not perform.
var ErrForbidden = errors.New("training: forbidden")

// ErrSessionFull is returned when an enrollment would exceed capacity.
var ErrSessionFull = errors.New("training: session full")

// Service enforces the permission checks around training sessions. The add
// customer operation deliberately goes through the decision engine rather
// than a raw grant lookup, so the salesperson allowance applies here and
// nowhere else.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns sessions matching the filter. Session listings are not
// ownership scoped; visibility is controlled by the training menu.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Session, error) {
	rows, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("training: list: %w", err)
	}
	return rows, nil
}

// Get returns one session.
func (s *Service) Get(ctx context.Context, id int64) (*Session, error) {
	return s.repo.GetSession(ctx, id)
}

// Create stores a new session.
func (s *Service) Create(ctx context.Context, ac *authz.Context, sess Session) (*Session, error) {
	if !ac.HasPermission(authz.PermTrainingAdd) {
		return nil, ErrForbidden
	}
	id, err := s.repo.CreateSession(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("training: create: %w", err)
	}
	sess.ID = id
	return &sess, nil
}

// Update rewrites a session.
func (s *Service) Update(ctx context.Context, ac *authz.Context, sess Session) error {
	if !ac.HasPermission(authz.PermTrainingEdit) {
		return ErrForbidden
	}
	return s.repo.UpdateSession(ctx, sess)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, ac *authz.Context, id int64) error {
	if !ac.HasPermission(authz.PermTrainingDelete) {
		return ErrForbidden
	}
	return s.repo.DeleteSession(ctx, id)
}

// AddCustomer enrolls a customer into a session. Authorization runs through
// HasPermission, which lets any salesperson through regardless of their
// stored grants; other roles need the training_add_customer grant.
func (s *Service) AddCustomer(ctx context.Context, ac *authz.Context, sessionID, customerID int64) error {
	if ac == nil || !ac.HasPermission(authz.PermTrainingAddCustomer) {
		return ErrForbidden
	}

	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Capacity > 0 {
		count, err := s.repo.CountEnrollments(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("training: count enrollments: %w", err)
		}
		if count >= sess.Capacity {
			return ErrSessionFull
		}
	}

	return s.repo.AddEnrollment(ctx, Enrollment{
		SessionID:  sessionID,
		CustomerID: customerID,
		AddedBy:    ac.UserID,
	})
}

// Enrollments lists the customers enrolled in a session.
func (s *Service) Enrollments(ctx context.Context, sessionID int64) ([]Enrollment, error) {
	return s.repo.ListEnrollments(ctx, sessionID)
}

// Documents lists the course material attached to a session.
func (s *Service) Documents(ctx context.Context, sessionID int64) ([]Document, error) {
	return s.repo.ListDocuments(ctx, sessionID)
}

// Document returns one document for download. Download is a separate grant
// from viewing the session it belongs to.
func (s *Service) Document(ctx context.Context, ac *authz.Context, id int64) (*Document, error) {
	if !ac.HasPermission(authz.PermDocumentDownload) {
		return nil, ErrForbidden
	}
	return s.repo.GetDocument(ctx, id)
}

// ExportCSV writes the session listing as CSV and returns the row count.
func (s *Service) ExportCSV(ctx context.Context, filter ListFilter, w io.Writer) (int, error) {
	rows, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("training: export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ID", "Title", "Expert", "Scheduled", "Capacity"}); err != nil {
		return 0, err
	}
	for _, sess := range rows {
		record := []string{
			strconv.FormatInt(sess.ID, 10),
			sess.Title,
			sess.ExpertName,
			sess.ScheduledAt.Format("2006-01-02 15:04"),
			strconv.Itoa(sess.Capacity),
		}
		if err := writer.Write(record); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	return len(rows), writer.Error()
}

// IsNotFound reports whether err denotes a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
