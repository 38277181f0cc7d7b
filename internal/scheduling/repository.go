package scheduling

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSlotUnavailable       = errors.New("slot is not available")
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrConfirmationCodeTaken = errors.New("confirmation code already in use")
)

// Repository contains all DB interactions needed by the service and the
// slot generator.
type Repository interface {
	ListSpecialties(ctx context.Context) ([]Specialty, error)
	SpecialtyExists(ctx context.Context, name string) (bool, error)

	// Availability: open slots for active doctors of an active specialty,
	// start_time >= from, ordered ascending, at most limit rows.
	FindAvailableSlots(ctx context.Context, specialtyName string, from time.Time, limit int) ([]AvailableSlot, error)

	// Booking transaction: claim the slot, upsert the patient by contact
	// info, insert the confirmed appointment and its audit event, all in
	// one transaction. Returns ErrSlotUnavailable when the slot was taken
	// and ErrConfirmationCodeTaken when the code collided.
	Book(ctx context.Context, req BookingRequest, code string, bookedAt time.Time) (*BookingRecord, error)

	GetBookingByCode(ctx context.Context, code string) (*BookingRecord, error)

	// Slot generator
	ListActiveDoctors(ctx context.Context) ([]Doctor, error)
	InsertSlots(ctx context.Context, slots []TimeSlot) (int64, error)

	// Audit logging outside the booking transaction
	InsertEvent(ctx context.Context, ev EventLog) error
}
