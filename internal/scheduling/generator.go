package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clinicport/patient-portal/internal/observability/metrics"
	"github.com/clinicport/patient-portal/pkg/logging"
)

// Clinic hours: 09:00-12:00 and 13:00-17:00 UTC in 30-minute slots, which is
// 14 slots per doctor per weekday.
const slotDuration = 30 * time.Minute

var sessionHours = []struct{ fromHour, toHour int }{
	{9, 12},
	{13, 17},
}

// Generator materializes the bookable slot inventory ahead of demand. It only
// ever inserts; bookings flip availability and are never touched here.
type Generator struct {
	repo    Repository
	logger  *logging.Logger
	metrics *metrics.SchedulingMetrics
	now     func() time.Time
}

func NewGenerator(repo Repository, logger *logging.Logger, m *metrics.SchedulingMetrics) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		repo:    repo,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Generate creates the slot catalog for every active doctor over
// [today, today+daysAhead), skipping weekends and any slot that already
// exists. Safe to re-run arbitrarily often. Returns how many slots were
// actually inserted.
func (g *Generator) Generate(ctx context.Context, daysAhead int) (int64, error) {
	if daysAhead <= 0 {
		return 0, fmt.Errorf("daysAhead must be positive, got %d", daysAhead)
	}

	doctors, err := g.repo.ListActiveDoctors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active doctors: %w", err)
	}

	startDate := startOfUTCDay(g.now())
	slots := buildSlotCatalog(doctors, startDate, daysAhead)

	inserted, err := g.repo.InsertSlots(ctx, slots)
	if err != nil {
		return 0, fmt.Errorf("insert slots: %w", err)
	}

	g.metrics.AddSlotsGenerated(float64(inserted))
	g.logger.Info("slot generation complete",
		"doctors", len(doctors),
		"days_ahead", daysAhead,
		"candidates", len(slots),
		"inserted", inserted,
	)

	payload, _ := json.Marshal(map[string]any{
		"doctors":    len(doctors),
		"days_ahead": daysAhead,
		"inserted":   inserted,
	})
	if err := g.repo.InsertEvent(ctx, EventLog{
		EventType: EventSlotsGenerated,
		Payload:   payload,
		CreatedAt: g.now().UTC(),
	}); err != nil {
		// The inventory is already committed; the audit row is best effort.
		g.logger.Warn("failed to record generation event", "error", err)
	}

	return inserted, nil
}

func buildSlotCatalog(doctors []Doctor, startDate time.Time, daysAhead int) []TimeSlot {
	var slots []TimeSlot

	for _, doctor := range doctors {
		for day := 0; day < daysAhead; day++ {
			date := startDate.AddDate(0, 0, day)
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}
			for _, start := range dailySlotStarts(date) {
				slots = append(slots, TimeSlot{
					DoctorID:    doctor.ID,
					StartTime:   start,
					EndTime:     start.Add(slotDuration),
					IsAvailable: true,
				})
			}
		}
	}

	return slots
}

func dailySlotStarts(date time.Time) []time.Time {
	var starts []time.Time
	for _, session := range sessionHours {
		sessionStart := time.Date(date.Year(), date.Month(), date.Day(), session.fromHour, 0, 0, 0, time.UTC)
		sessionEnd := time.Date(date.Year(), date.Month(), date.Day(), session.toHour, 0, 0, 0, time.UTC)
		for t := sessionStart; t.Before(sessionEnd); t = t.Add(slotDuration) {
			starts = append(starts, t)
		}
	}
	return starts
}
