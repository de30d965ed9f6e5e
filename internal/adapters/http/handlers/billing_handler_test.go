package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/clock"
	"gymcore/internal/config"
	"gymcore/internal/core/services"
	"gymcore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Minimal in-memory stores for driving the HTTP surface. Guarded updates
// succeed whenever the record exists; optimistic-concurrency behavior is
// covered by the service tests.

type memRecurringStore struct {
	nextID  uint
	records map[uint]*models.RecurringPayment
}

func (s *memRecurringStore) Create(_ context.Context, rp *models.RecurringPayment) error {
	s.nextID++
	rp.ID = s.nextID
	s.records[rp.ID] = rp
	return nil
}

func (s *memRecurringStore) GetByID(_ context.Context, id uint) (*models.RecurringPayment, error) {
	rp, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rp
	return &copied, nil
}

func (s *memRecurringStore) FindDue(_ context.Context, _ time.Time) ([]*models.RecurringPayment, error) {
	return nil, nil
}

func (s *memRecurringStore) UpdateGuarded(_ context.Context, rp *models.RecurringPayment, _ string, _ int) error {
	if _, ok := s.records[rp.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *rp
	s.records[rp.ID] = &copied
	return nil
}

func (s *memRecurringStore) ListByMember(_ context.Context, _ uint) ([]*models.RecurringPayment, error) {
	return nil, nil
}

func (s *memRecurringStore) List(_ context.Context, _ string, _, _ int) ([]*models.RecurringPayment, int64, error) {
	out := make([]*models.RecurringPayment, 0, len(s.records))
	for _, rp := range s.records {
		out = append(out, rp)
	}
	return out, int64(len(out)), nil
}

type memInstallmentStore struct {
	nextID  uint
	records map[uint]*models.InstallmentPlan
}

func (s *memInstallmentStore) Create(_ context.Context, plan *models.InstallmentPlan) error {
	s.nextID++
	plan.ID = s.nextID
	s.records[plan.ID] = plan
	return nil
}

func (s *memInstallmentStore) GetByID(_ context.Context, id uint) (*models.InstallmentPlan, error) {
	plan, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *plan
	return &copied, nil
}

func (s *memInstallmentStore) FindDue(_ context.Context, _ time.Time) ([]*models.InstallmentPlan, error) {
	return nil, nil
}

func (s *memInstallmentStore) UpdateGuarded(_ context.Context, plan *models.InstallmentPlan, _ string, _ int) error {
	if _, ok := s.records[plan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *plan
	s.records[plan.ID] = &copied
	return nil
}

func (s *memInstallmentStore) ListByMember(_ context.Context, _ uint) ([]*models.InstallmentPlan, error) {
	return nil, nil
}

func (s *memInstallmentStore) List(_ context.Context, _ string, _, _ int) ([]*models.InstallmentPlan, int64, error) {
	return nil, 0, nil
}

type memPaymentStore struct{}

func (memPaymentStore) Create(_ context.Context, _ *models.Payment) error { return nil }
func (memPaymentStore) GetByID(_ context.Context, _ uint) (*models.Payment, error) {
	return nil, gorm.ErrRecordNotFound
}
func (memPaymentStore) ListByMember(_ context.Context, _ uint, _, _ int) ([]*models.Payment, int64, error) {
	return nil, 0, nil
}
func (memPaymentStore) List(_ context.Context, _, _ int) ([]*models.Payment, int64, error) {
	return nil, 0, nil
}

type memMemberStore struct {
	members map[uint]*models.Member
}

func (s *memMemberStore) Create(_ context.Context, m *models.Member) error { return nil }
func (s *memMemberStore) GetByID(_ context.Context, id uint) (*models.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}
func (s *memMemberStore) GetByMemberNo(_ context.Context, _ string) (*models.Member, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *memMemberStore) Update(_ context.Context, _ *models.Member) error { return nil }
func (s *memMemberStore) Delete(_ context.Context, _ uint) error          { return nil }
func (s *memMemberStore) List(_ context.Context, _, _ int) ([]*models.Member, int64, error) {
	return nil, 0, nil
}
func (s *memMemberStore) Search(_ context.Context, _ string, _ int) ([]*models.Member, error) {
	return nil, nil
}

type memAuditStore struct{}

func (memAuditStore) Create(_ context.Context, _ *models.AuditLog) error { return nil }
func (memAuditStore) List(_ context.Context, _ string, _ uint, _, _ int) ([]*models.AuditLog, int64, error) {
	return nil, 0, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	billingService := services.NewBillingService(
		&memRecurringStore{records: map[uint]*models.RecurringPayment{}},
		&memInstallmentStore{records: map[uint]*models.InstallmentPlan{}},
		memPaymentStore{},
		&memMemberStore{members: map[uint]*models.Member{
			1: {ID: 1, MemberNo: "GM-TEST0001", FullName: "Somchai J."},
		}},
		nil, // gateway unused by the HTTP surface
		services.NewNotificationService(),
		services.NewAuditService(memAuditStore{}),
		clock.System(),
		&config.BillingConfig{DefaultMaxAttempts: 3, DefaultRetryDelayMinutes: 60, DefaultMethod: "card"},
	)

	h := NewBillingHandler(billingService)

	app := fiber.New()
	app.Post("/billing/recurring", h.CreateRecurringPayment)
	app.Get("/billing/recurring/:id", h.GetRecurringPayment)
	app.Post("/billing/recurring/:id/pause", h.PauseRecurringPayment)
	app.Post("/billing/recurring/:id/resume", h.ResumeRecurringPayment)
	app.Post("/billing/recurring/:id/cancel", h.CancelRecurringPayment)
	app.Post("/billing/installments", h.CreateInstallmentPlan)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, response.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var envelope response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestCreateRecurringPaymentEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doJSON(t, app, fiber.MethodPost, "/billing/recurring", fiber.Map{
		"member_id":  1,
		"amount":     "1200.00",
		"frequency":  "monthly",
		"start_date": "2025-01-15",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)
}

func TestCreateRecurringPaymentEndpointValidation(t *testing.T) {
	app := newTestApp(t)

	// Zero amount
	resp, envelope := doJSON(t, app, fiber.MethodPost, "/billing/recurring", fiber.Map{
		"member_id":  1,
		"amount":     "0",
		"frequency":  "monthly",
		"start_date": "2025-01-15",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.False(t, envelope.Success)

	// Unknown member
	resp, _ = doJSON(t, app, fiber.MethodPost, "/billing/recurring", fiber.Map{
		"member_id":  42,
		"amount":     "1200.00",
		"frequency":  "monthly",
		"start_date": "2025-01-15",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRecurringLifecycleEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/billing/recurring", fiber.Map{
		"member_id":  1,
		"amount":     "500.00",
		"frequency":  "monthly",
		"start_date": "2025-01-15",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/billing/recurring/1/pause", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Pausing a paused record conflicts
	resp, _ = doJSON(t, app, fiber.MethodPost, "/billing/recurring/1/pause", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/billing/recurring/1/resume", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/billing/recurring/1/cancel", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Cancel is terminal
	resp, _ = doJSON(t, app, fiber.MethodPost, "/billing/recurring/1/cancel", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGetRecurringPaymentEndpointNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/billing/recurring/999", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/billing/recurring/abc", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateInstallmentPlanEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doJSON(t, app, fiber.MethodPost, "/billing/installments", fiber.Map{
		"member_id":              1,
		"total_amount":           "100.00",
		"number_of_installments": 3,
		"start_date":             "2025-01-15",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.Contains(t, string(data), `"installment_amount":"33.33"`)
}

func TestBillingEndpointsRejectMalformedBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/billing/recurring", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
