package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinicport/patient-portal/internal/observability/metrics"
	redisclient "github.com/clinicport/patient-portal/internal/redis"
	"github.com/clinicport/patient-portal/pkg/logging"
)

const (
	// availabilityLimit bounds how many slots the conversation agent is
	// handed per query.
	availabilityLimit = 20

	// maxCodeAttempts bounds the confirmation-code retry loop. Codes are
	// drawn from a 32^8 space, so a second collision in a row is already
	// vanishingly unlikely.
	maxCodeAttempts = 5
)

var (
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

type Service struct {
	repo    Repository
	locker  redisclient.Locker
	logger  *logging.Logger
	metrics *metrics.SchedulingMetrics
	now     func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, logger *logging.Logger, m *metrics.SchedulingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:    repo,
		locker:  locker,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// ListSpecialties returns the active specialties, ordered by name.
func (s *Service) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	specialties, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return specialties, nil
}

// CheckAvailability returns up to 20 open slots for a specialty, earliest
// first. The match on specialty name is case-insensitive, and an unknown
// specialty simply yields an empty list. This sits on an advisory path for
// the conversation agent, so persistence errors degrade to "no availability"
// instead of propagating.
func (s *Service) CheckAvailability(ctx context.Context, specialtyName string, fromDate *time.Time) AvailabilityResult {
	from := startOfUTCDay(s.now())
	if fromDate != nil {
		from = fromDate.UTC()
	}

	result := AvailabilityResult{
		Specialty: specialtyName,
		Date:      from.Format("2006-01-02"),
	}

	slots, err := s.repo.FindAvailableSlots(ctx, specialtyName, from, availabilityLimit)
	if err != nil {
		s.logger.Error("availability query failed", "specialty", specialtyName, "error", err)
		s.metrics.ObserveAvailability(false)
		result.Message = fmt.Sprintf("No available slots found for %s.", specialtyName)
		return result
	}

	for i := range slots {
		slots[i].FormattedDateTime = FormatWindow(slots[i].StartTime, slots[i].EndTime)
	}

	result.Slots = slots
	result.HasAvailability = len(slots) > 0
	if result.HasAvailability {
		result.Message = fmt.Sprintf("Found %d available slots for %s.", len(slots), specialtyName)
	} else {
		result.Message = fmt.Sprintf("No available slots found for %s.", specialtyName)
	}

	s.metrics.ObserveAvailability(result.HasAvailability)
	return result
}

// BookAppointment reserves the slot, upserts the patient and records the
// confirmed appointment, all atomically. Business failures (slot taken, slot
// contended) come back as a BookingResult with Success=false; only unexpected
// persistence errors are returned as errors.
func (s *Service) BookAppointment(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if req.SlotID <= 0 || strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.ContactInfo) == "" {
		return &BookingResult{
			Success: false,
			Message: "Patient name, contact information and a slot are required to book.",
		}, nil
	}

	start := s.now()

	var rec *BookingRecord
	err := s.locker.WithSlotLock(ctx, req.SlotID, func(lockCtx context.Context) error {
		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			code := NewConfirmationCode()
			r, err := s.repo.Book(lockCtx, req, code, s.now().UTC())
			if errors.Is(err, ErrConfirmationCodeTaken) {
				s.logger.Warn("confirmation code collision, retrying", "slot_id", req.SlotID, "attempt", attempt+1)
				continue
			}
			if err != nil {
				return err
			}
			rec = r
			return nil
		}
		return ErrConfirmationCodeTaken
	})

	elapsed := s.now().Sub(start).Seconds()

	switch {
	case err == nil:
		s.metrics.ObserveBooking("confirmed", elapsed)
		s.logger.Info("appointment booked",
			"appointment_id", rec.AppointmentID,
			"slot_id", req.SlotID,
			"code", rec.ConfirmationCode,
		)
		return resultFromRecord(rec, "Appointment booked successfully!"), nil

	case errors.Is(err, ErrSlotUnavailable):
		s.metrics.ObserveBooking("slot_unavailable", elapsed)
		return &BookingResult{
			Success: false,
			Message: "The selected time slot is no longer available.",
		}, nil

	case errors.Is(err, redisclient.ErrLockNotAcquired):
		s.metrics.ObserveBooking("contended", elapsed)
		return &BookingResult{
			Success: false,
			Message: "This time slot is currently being booked. Please try again shortly.",
		}, nil

	default:
		s.metrics.ObserveBooking("error", elapsed)
		s.logger.Error("booking failed", "slot_id", req.SlotID, "error", err)
		return nil, fmt.Errorf("book appointment: %w", err)
	}
}

// GetAppointmentByCode resolves a confirmation code back to the full
// appointment details. A miss is reported in the result, not as an error.
func (s *Service) GetAppointmentByCode(ctx context.Context, code string) (*BookingResult, error) {
	rec, err := s.repo.GetBookingByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return &BookingResult{
				Success: false,
				Message: "Appointment not found.",
			}, nil
		}
		return nil, fmt.Errorf("get appointment by code: %w", err)
	}

	return resultFromRecord(rec, ""), nil
}

// ValidateAppointmentDetails applies the completeness and specialty gates to
// details extracted by the conversation agent. It has no side effects and can
// be called on every turn as the agent fills in fields.
func (s *Service) ValidateAppointmentDetails(ctx context.Context, details AppointmentDetails) (*ValidationResult, error) {
	if details.Specialty != UnknownValue && strings.TrimSpace(details.Specialty) != "" {
		exists, err := s.repo.SpecialtyExists(ctx, details.Specialty)
		if err != nil {
			return nil, fmt.Errorf("check specialty: %w", err)
		}
		if !exists {
			return unknownSpecialtyResult(details), nil
		}
	}

	return ValidateDetails(details), nil
}

func startOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
