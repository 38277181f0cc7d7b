package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinicport/patient-portal/internal/scheduling"
)

// fakeRepo backs the real service with in-memory state so handlers are
// exercised through the full stack without a database.
type fakeRepo struct {
	mu          sync.Mutex
	specialties []scheduling.Specialty
	available   []scheduling.AvailableSlot
	slots       map[int64]bool // slotID -> still available
	bookings    map[string]*scheduling.BookingRecord
	nextApptID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		specialties: []scheduling.Specialty{
			{ID: 1, Name: "Cardiology", Description: "Heart-related conditions", IsActive: true},
		},
		slots:    map[int64]bool{100: true},
		bookings: make(map[string]*scheduling.BookingRecord),
	}
}

func (f *fakeRepo) ListSpecialties(ctx context.Context) ([]scheduling.Specialty, error) {
	return f.specialties, nil
}

func (f *fakeRepo) SpecialtyExists(ctx context.Context, name string) (bool, error) {
	for _, s := range f.specialties {
		if strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) FindAvailableSlots(ctx context.Context, specialtyName string, from time.Time, limit int) ([]scheduling.AvailableSlot, error) {
	if len(f.available) > limit {
		return f.available[:limit], nil
	}
	return f.available, nil
}

func (f *fakeRepo) Book(ctx context.Context, req scheduling.BookingRequest, code string, bookedAt time.Time) (*scheduling.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.slots[req.SlotID] {
		return nil, scheduling.ErrSlotUnavailable
	}
	f.slots[req.SlotID] = false

	start := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	f.nextApptID++
	rec := &scheduling.BookingRecord{
		AppointmentID:    f.nextApptID,
		ConfirmationCode: code,
		PatientName:      req.PatientName,
		DoctorName:       "Dr. Johnson",
		SpecialtyName:    "Cardiology",
		StartTime:        start,
		EndTime:          start.Add(30 * time.Minute),
		Reason:           req.Reason,
		Status:           scheduling.StatusConfirmed,
	}
	f.bookings[code] = rec
	return rec, nil
}

func (f *fakeRepo) GetBookingByCode(ctx context.Context, code string) (*scheduling.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.bookings[code]
	if !ok {
		return nil, scheduling.ErrAppointmentNotFound
	}
	return rec, nil
}

func (f *fakeRepo) ListActiveDoctors(ctx context.Context) ([]scheduling.Doctor, error) {
	return nil, nil
}

func (f *fakeRepo) InsertSlots(ctx context.Context, slots []scheduling.TimeSlot) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) InsertEvent(ctx context.Context, ev scheduling.EventLog) error {
	return nil
}

type passLocker struct{}

func (passLocker) WithSlotLock(ctx context.Context, slotID int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestRouter(repo *fakeRepo) http.Handler {
	svc := scheduling.NewService(repo, passLocker{}, nil, nil)
	return NewRouter(RouterConfig{Service: svc})
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	repo := newFakeRepo()
	start := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	repo.available = []scheduling.AvailableSlot{{
		SlotID:        100,
		DoctorName:    "Dr. Johnson",
		SpecialtyName: "Cardiology",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
	}}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/availability?specialty=Cardiology", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.HasAvailability)
	require.Len(t, resp.AvailableSlots, 1)
	require.Equal(t, "Cardiology", resp.Specialty)
	require.NotEmpty(t, resp.AvailableSlots[0].FormattedDateTime)
}

func TestCheckAvailabilityRequiresSpecialty(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityRejectsBadDate(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/availability?specialty=Cardiology&date=tomorrow", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func bookOnce(t *testing.T, router http.Handler, contact string) BookingResponse {
	t.Helper()

	body, _ := json.Marshal(BookAppointmentRequest{
		PatientName: "Jane Doe",
		ContactInfo: contact,
		SlotID:      100,
		Reason:      "checkup",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if rec.Code != http.StatusCreated && rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	return resp
}

func TestBookAppointmentEndpoint(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	resp := bookOnce(t, router, "jane@example.com")

	require.True(t, resp.Success)
	require.Len(t, resp.ConfirmationCode, 8)
	require.Equal(t, "Dr. Johnson", resp.DoctorName)
	require.Equal(t, "Cardiology", resp.SpecialtyName)
	require.Equal(t, "Appointment booked successfully!", resp.Message)
}

func TestBookAppointmentEndpointConflict(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	first := bookOnce(t, router, "jane@example.com")
	require.True(t, first.Success)

	body, _ := json.Marshal(BookAppointmentRequest{
		PatientName: "John Roe",
		ContactInfo: "john@example.com",
		SlotID:      100,
		Reason:      "consult",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "The selected time slot is no longer available.", resp.Message)
}

func TestBookAppointmentEndpointBadBody(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAppointmentByCodeEndpoint(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	booked := bookOnce(t, router, "jane@example.com")
	require.True(t, booked.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/"+booked.ConfirmationCode, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, booked.DoctorName, resp.DoctorName)
	require.Equal(t, booked.DateTime, resp.DateTime)
	require.Equal(t, "confirmed", resp.Status)
}

func TestGetAppointmentByCodeNotFound(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/XXXXYYYY", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "Appointment not found.", resp.Message)
}

func TestValidateEndpointMissingFields(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	body := `{
		"patientName": "Jane",
		"specialty": "Cardiology",
		"dateTime": "unknown",
		"reason": "checkup",
		"contactInfo": "jane@example.com"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/appointments/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.IsValid)
	require.Equal(t, []string{"preferred date and time"}, resp.MissingFields)
}

func TestValidateEndpointUnknownSpecialty(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	body := `{
		"patientName": "Jane",
		"specialty": "Podiatry",
		"dateTime": "next Tuesday",
		"reason": "checkup",
		"contactInfo": "jane@example.com"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/appointments/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.IsValid)
	require.Empty(t, resp.MissingFields)
	require.Contains(t, resp.Message, "not available")
}

func TestListSpecialtiesEndpoint(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/specialties", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []SpecialtyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "Cardiology", resp[0].Name)
}
