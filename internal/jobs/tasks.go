package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/booking"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/metrics"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/notify"
)

const (
	scanInterval     = time.Minute
	reminderInterval = 15 * time.Minute

	overtimeCooldown = 15 * time.Minute

	// Ending-soon fires inside [-15m, -10m) before the scheduled end.
	endingSoonFrom = 15 * time.Minute
	endingSoonTo   = 10 * time.Minute

	// Reminders go out inside the [45m, 75m) lead window; the window plus
	// the once-per-booking check keeps overlapping ticks from double-sending.
	reminderMinLead = 45 * time.Minute
	reminderMaxLead = 75 * time.Minute
)

// Deps are the collaborators shared by the recurring scans.
type Deps struct {
	Bookings booking.Service
	Repo     booking.Repository
	Alerts   notify.AlertStore
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger

	HoldWindow time.Duration

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// Tasks builds the standard task set.
func Tasks(d Deps) []Task {
	return []Task{
		{Name: "expire_holds", Interval: scanInterval, Run: d.ExpireHolds},
		{Name: "monitor_in_progress", Interval: scanInterval, Run: d.MonitorInProgress},
		{Name: "arrival_reminders", Interval: reminderInterval, Run: d.SendReminders},
	}
}

// ExpireHolds cancels pending, unpaid bookings whose payment flow started
// longer than the hold window ago. Pending bookings where the customer
// never started paying are left alone.
func (d *Deps) ExpireHolds(ctx context.Context) error {
	cutoff := d.now().Add(-d.HoldWindow)

	expired, err := d.Repo.ListExpiredHolds(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list expired holds failed: %w", err)
	}

	for _, b := range expired {
		if _, err := d.Bookings.Cancel(ctx, b.ID, "payment not completed within hold window", "system"); err != nil {
			d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("expire hold failed")
			continue
		}
		d.Metrics.HoldsExpired.Inc()
		d.Logger.Info().Str("booking_id", b.ID).Str("ref_code", b.RefCode).Msg("unpaid hold expired")
	}
	return nil
}

// MonitorInProgress raises overtime and ending-soon alerts for running
// bookings. De-duplication goes through the alert store, so a re-entrant
// or overlapping scan is harmless.
func (d *Deps) MonitorInProgress(ctx context.Context) error {
	now := d.now()

	running, err := d.Repo.ListInProgress(ctx)
	if err != nil {
		return fmt.Errorf("list in-progress bookings failed: %w", err)
	}

	for _, b := range running {
		overdue := now.Sub(b.EndTime)

		switch {
		case overdue > 0:
			d.raiseOvertime(ctx, b, int(overdue/time.Minute), now)
		case overdue >= -endingSoonFrom && overdue < -endingSoonTo:
			d.raiseEndingSoon(ctx, b, int(-overdue/time.Minute))
		}
	}
	return nil
}

func (d *Deps) raiseOvertime(ctx context.Context, b *booking.Booking, minutes int, now time.Time) {
	exists, err := d.Alerts.ExistsSince(ctx, b.ID, notify.AlertOvertime, now.Add(-overtimeCooldown))
	if err != nil {
		d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("overtime alert lookup failed")
		return
	}
	if exists {
		return
	}

	d.Notifier.OvertimeAlert(ctx, b.RefCode, minutes)
	if err := d.Alerts.Record(ctx, b.ID, notify.AlertOvertime); err != nil {
		d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("record overtime alert failed")
		return
	}
	d.Metrics.AlertsRaised.WithLabelValues(string(notify.AlertOvertime)).Inc()
}

func (d *Deps) raiseEndingSoon(ctx context.Context, b *booking.Booking, minutesLeft int) {
	// Once per booking, ever.
	exists, err := d.Alerts.ExistsSince(ctx, b.ID, notify.AlertEndingSoon, time.Time{})
	if err != nil {
		d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("ending-soon alert lookup failed")
		return
	}
	if exists {
		return
	}

	d.Notifier.EndingSoonAlert(ctx, b.RefCode, minutesLeft)
	if err := d.Alerts.Record(ctx, b.ID, notify.AlertEndingSoon); err != nil {
		d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("record ending-soon alert failed")
		return
	}
	d.Metrics.AlertsRaised.WithLabelValues(string(notify.AlertEndingSoon)).Inc()
}

// SendReminders sends one pre-arrival reminder per confirmed booking
// starting inside the lead window.
func (d *Deps) SendReminders(ctx context.Context) error {
	now := d.now()

	upcoming, err := d.Repo.ListConfirmedStartingBetween(ctx, now.Add(reminderMinLead), now.Add(reminderMaxLead))
	if err != nil {
		return fmt.Errorf("list upcoming bookings failed: %w", err)
	}

	for _, b := range upcoming {
		exists, err := d.Alerts.ExistsSince(ctx, b.ID, notify.AlertReminder, time.Time{})
		if err != nil {
			d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("reminder lookup failed")
			continue
		}
		if exists {
			continue
		}

		d.Notifier.ArrivalReminder(ctx, b.RefCode, b.StartTime)
		if err := d.Alerts.Record(ctx, b.ID, notify.AlertReminder); err != nil {
			d.Logger.Error().Err(err).Str("booking_id", b.ID).Msg("record reminder failed")
			continue
		}
		d.Metrics.AlertsRaised.WithLabelValues(string(notify.AlertReminder)).Inc()
	}
	return nil
}
