package training

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

type mockRepo struct {
	sessions    map[int64]*Session
	enrollments []Enrollment
	documents   map[int64]*Document
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		sessions:  map[int64]*Session{},
		documents: map[int64]*Document{},
	}
}

func (m *mockRepo) GetSession(_ context.Context, id int64) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockRepo) ListSessions(_ context.Context, _ ListFilter) ([]Session, error) {
	var out []Session
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockRepo) CreateSession(_ context.Context, s Session) (int64, error) {
	id := int64(len(m.sessions) + 1)
	s.ID = id
	m.sessions[id] = &s
	return id, nil
}

func (m *mockRepo) UpdateSession(_ context.Context, s Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return shared.ErrNotFound
	}
	m.sessions[s.ID] = &s
	return nil
}

func (m *mockRepo) DeleteSession(_ context.Context, id int64) error {
	if _, ok := m.sessions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockRepo) AddEnrollment(_ context.Context, e Enrollment) error {
	for _, existing := range m.enrollments {
		if existing.SessionID == e.SessionID && existing.CustomerID == e.CustomerID {
			return nil
		}
	}
	m.enrollments = append(m.enrollments, e)
	return nil
}

func (m *mockRepo) ListEnrollments(_ context.Context, sessionID int64) ([]Enrollment, error) {
	var out []Enrollment
	for _, e := range m.enrollments {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) CountEnrollments(_ context.Context, sessionID int64) (int, error) {
	rows, _ := m.ListEnrollments(context.Background(), sessionID)
	return len(rows), nil
}

func (m *mockRepo) GetDocument(_ context.Context, id int64) (*Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockRepo) ListDocuments(_ context.Context, sessionID int64) ([]Document, error) {
	var out []Document
	for _, d := range m.documents {
		if d.SessionID == sessionID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func seededService() (*Service, *mockRepo) {
	repo := newMockRepo()
	repo.sessions[1] = &Session{
		ID:          1,
		Title:       "Advanced Negotiation",
		ExpertID:    40,
		ExpertName:  "Dr. Sun",
		ScheduledAt: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		Capacity:    2,
	}
	repo.documents[7] = &Document{
		ID:          7,
		SessionID:   1,
		Filename:    "slides.pdf",
		ContentType: "application/pdf",
		SizeBytes:   1024,
		StorageKey:  "training/1/slides.pdf",
		UploadedBy:  40,
	}
	return NewService(repo), repo
}

func TestSalespersonAddsCustomerWithoutGrant(t *testing.T) {
	svc, repo := seededService()
	// No training_add_customer in the granted set.
	sp := &authz.Context{UserID: 10, Role: authz.RoleSalesperson}

	require.NoError(t, svc.AddCustomer(context.Background(), sp, 1, 100))
	require.Len(t, repo.enrollments, 1)
	assert.Equal(t, int64(10), repo.enrollments[0].AddedBy)
}

func TestExpertNeedsGrantToAddCustomer(t *testing.T) {
	svc, _ := seededService()
	expert := &authz.Context{UserID: 40, Role: authz.RoleExpert}

	err := svc.AddCustomer(context.Background(), expert, 1, 100)
	assert.ErrorIs(t, err, ErrForbidden)

	granted := &authz.Context{
		UserID:             40,
		Role:               authz.RoleExpert,
		GrantedPermissions: []string{authz.PermTrainingAddCustomer},
	}
	assert.NoError(t, svc.AddCustomer(context.Background(), granted, 1, 100))
}

func TestAdminAddsCustomerUnconditionally(t *testing.T) {
	svc, _ := seededService()
	admin := &authz.Context{UserID: 1, Role: authz.RoleAdmin}

	assert.NoError(t, svc.AddCustomer(context.Background(), admin, 1, 100))
}

func TestNilContextCannotAddCustomer(t *testing.T) {
	svc, _ := seededService()
	assert.ErrorIs(t, svc.AddCustomer(context.Background(), nil, 1, 100), ErrForbidden)
}

func TestAddCustomerRespectsCapacity(t *testing.T) {
	svc, _ := seededService()
	admin := &authz.Context{UserID: 1, Role: authz.RoleAdmin}

	require.NoError(t, svc.AddCustomer(context.Background(), admin, 1, 100))
	require.NoError(t, svc.AddCustomer(context.Background(), admin, 1, 101))
	assert.ErrorIs(t, svc.AddCustomer(context.Background(), admin, 1, 102), ErrSessionFull)
}

func TestAddCustomerToMissingSession(t *testing.T) {
	svc, _ := seededService()
	admin := &authz.Context{UserID: 1, Role: authz.RoleAdmin}

	assert.True(t, IsNotFound(svc.AddCustomer(context.Background(), admin, 99, 100)))
}

func TestDocumentDownloadRequiresGrant(t *testing.T) {
	svc, _ := seededService()

	sp := &authz.Context{UserID: 10, Role: authz.RoleSalesperson}
	_, err := svc.Document(context.Background(), sp, 7)
	assert.ErrorIs(t, err, ErrForbidden)

	granted := &authz.Context{
		UserID:             10,
		Role:               authz.RoleSalesperson,
		GrantedPermissions: []string{authz.PermDocumentDownload},
	}
	doc, err := svc.Document(context.Background(), granted, 7)
	require.NoError(t, err)
	assert.Equal(t, "slides.pdf", doc.Filename)
}

func TestSessionMutationsRequireGrants(t *testing.T) {
	svc, _ := seededService()
	sp := &authz.Context{UserID: 10, Role: authz.RoleSalesperson}

	_, err := svc.Create(context.Background(), sp, Session{Title: "Basics", ExpertID: 40})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Update(context.Background(), sp, Session{ID: 1}), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), sp, 1), ErrForbidden)

	manager := &authz.Context{
		UserID:             9,
		Role:               authz.RoleManager,
		GrantedPermissions: []string{authz.PermTrainingAdd},
	}
	sess, err := svc.Create(context.Background(), manager, Session{Title: "Basics", ExpertID: 40})
	require.NoError(t, err)
	assert.NotZero(t, sess.ID)
}
