package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const confirmationCodeConstraint = "appointments_confirmation_code_key"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanSpecialty(row pgx.Row) (*Specialty, error) {
	var s Specialty
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.IsActive)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanBookingRecord(row pgx.Row) (*BookingRecord, error) {
	var rec BookingRecord
	err := row.Scan(
		&rec.AppointmentID,
		&rec.ConfirmationCode,
		&rec.PatientName,
		&rec.DoctorName,
		&rec.SpecialtyName,
		&rec.StartTime,
		&rec.EndTime,
		&rec.Reason,
		&rec.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// Interface methods

func (r *PgRepository) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT specialty_id, name, description, is_active
		FROM specialties
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Specialty
	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	return result, rows.Err()
}

func (r *PgRepository) SpecialtyExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM specialties
			WHERE lower(name) = lower($1) AND is_active
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) FindAvailableSlots(ctx context.Context, specialtyName string, from time.Time, limit int) ([]AvailableSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ts.slot_id, d.name, s.name, ts.start_time, ts.end_time
		FROM time_slots ts
		JOIN doctors d ON d.doctor_id = ts.doctor_id
		JOIN specialties s ON s.specialty_id = d.specialty_id
		WHERE ts.is_available
		  AND d.is_active
		  AND s.is_active
		  AND lower(s.name) = lower($1)
		  AND ts.start_time >= $2
		ORDER BY ts.start_time
		LIMIT $3
	`, specialtyName, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailableSlot
	for rows.Next() {
		var s AvailableSlot
		if err := rows.Scan(&s.SlotID, &s.DoctorName, &s.SpecialtyName, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// Book runs the whole booking as one transaction:
//
//  1. claim the slot with a conditional update, so two racing bookers
//     cannot both flip is_available
//  2. upsert the patient keyed on contact_info (last write wins on name)
//  3. insert the confirmed appointment
//  4. insert the audit event
//
// Any failure rolls the whole thing back; there is no state where a patient
// or appointment exists without the slot claim.
func (r *PgRepository) Book(ctx context.Context, req BookingRequest, code string, bookedAt time.Time) (*BookingRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		doctorID           int64
		startTime, endTime time.Time
	)
	err = tx.QueryRow(ctx, `
		UPDATE time_slots
		SET is_available = FALSE
		WHERE slot_id = $1
		  AND is_available
		RETURNING doctor_id, start_time, end_time
	`, req.SlotID).Scan(&doctorID, &startTime, &endTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("claim slot: %w", err)
	}

	var (
		patientID   int64
		patientName string
	)
	err = tx.QueryRow(ctx, `
		INSERT INTO patients (name, contact_info, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (contact_info) DO UPDATE SET name = EXCLUDED.name
		RETURNING patient_id, name
	`, req.PatientName, req.ContactInfo).Scan(&patientID, &patientName)
	if err != nil {
		return nil, fmt.Errorf("upsert patient: %w", err)
	}

	var appointmentID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, slot_id, reason, status, confirmation_code, booked_at)
		VALUES ($1, $2, $3, 'confirmed', $4, $5)
		RETURNING appointment_id
	`, patientID, req.SlotID, req.Reason, code, bookedAt).Scan(&appointmentID)
	if err != nil {
		if isUniqueViolation(err, confirmationCodeConstraint) {
			return nil, ErrConfirmationCodeTaken
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	var doctorName, specialtyName string
	err = tx.QueryRow(ctx, `
		SELECT d.name, s.name
		FROM doctors d
		JOIN specialties s ON s.specialty_id = d.specialty_id
		WHERE d.doctor_id = $1
	`, doctorID).Scan(&doctorName, &specialtyName)
	if err != nil {
		return nil, fmt.Errorf("load doctor details: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"slot_id":    req.SlotID,
		"patient_id": patientID,
		"code":       code,
	})
	_, err = tx.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, now())
	`, EventBookingConfirmed, appointmentID, payload)
	if err != nil {
		return nil, fmt.Errorf("insert booking event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking tx: %w", err)
	}

	return &BookingRecord{
		AppointmentID:    appointmentID,
		ConfirmationCode: code,
		PatientName:      patientName,
		DoctorName:       doctorName,
		SpecialtyName:    specialtyName,
		StartTime:        startTime,
		EndTime:          endTime,
		Reason:           req.Reason,
		Status:           StatusConfirmed,
	}, nil
}

func (r *PgRepository) GetBookingByCode(ctx context.Context, code string) (*BookingRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT a.appointment_id, a.confirmation_code, p.name, d.name, s.name,
		       ts.start_time, ts.end_time, a.reason, a.status
		FROM appointments a
		JOIN patients p ON p.patient_id = a.patient_id
		JOIN time_slots ts ON ts.slot_id = a.slot_id
		JOIN doctors d ON d.doctor_id = ts.doctor_id
		JOIN specialties s ON s.specialty_id = d.specialty_id
		WHERE a.confirmation_code = $1
	`, code)
	return scanBookingRecord(row)
}

func (r *PgRepository) ListActiveDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, name, specialty_id, is_active
		FROM doctors
		WHERE is_active
		ORDER BY doctor_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.SpecialtyID, &d.IsActive); err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	return result, rows.Err()
}

// InsertSlots inserts the given slots in one transaction, skipping any
// (doctor, start, end) tuple that already exists. Re-running the generator
// over the same window is a no-op.
func (r *PgRepository) InsertSlots(ctx context.Context, slots []TimeSlot) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin slot insert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var inserted int64
	for _, s := range slots {
		tag, err := tx.Exec(ctx, `
			INSERT INTO time_slots (doctor_id, start_time, end_time, is_available)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (doctor_id, start_time, end_time) DO NOTHING
		`, s.DoctorID, s.StartTime, s.EndTime)
		if err != nil {
			return 0, fmt.Errorf("insert slot: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit slot insert tx: %w", err)
	}

	return inserted, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
