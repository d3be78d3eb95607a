package digest

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/revise-app/revise/internal/fsrs"
	"github.com/revise-app/revise/internal/store"
)

// Notifier receives the daily digest. The default implementation just logs;
// a bot or mail transport can plug in here.
type Notifier interface {
	Notify(message string) error
}

// LogNotifier writes the digest to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(message string) error {
	log.Printf("digest: %s", message)
	return nil
}

// Digest runs a once-a-day check for due topics and pushes a summary to the
// notifier.
type Digest struct {
	db        *store.DB
	notifier  Notifier
	scheduler *gocron.Scheduler
}

// New creates a digest bound to the database. A nil notifier logs.
func New(db *store.DB, notifier Notifier) *Digest {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Digest{
		db:        db,
		notifier:  notifier,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start schedules the daily run at the given local hour and returns
// immediately.
func (d *Digest) Start(hour int) error {
	at := fmt.Sprintf("%02d:00", hour)
	if _, err := d.scheduler.Every(1).Day().At(at).Do(d.run); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	d.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduled job.
func (d *Digest) Stop() {
	d.scheduler.Stop()
}

func (d *Digest) run() {
	if err := d.RunOnce(fsrs.Today()); err != nil {
		log.Printf("digest run failed: %v", err)
	}
}

// RunOnce builds and sends the digest for the given date. Exposed so the CLI
// can trigger it on demand.
func (d *Digest) RunOnce(today time.Time) error {
	msg, err := d.Build(today)
	if err != nil {
		return err
	}
	if msg == "" {
		return nil // nothing due, nothing to say
	}
	return d.notifier.Notify(msg)
}

// Build composes the digest text for a date. Empty means nothing is due.
func (d *Digest) Build(today time.Time) (string, error) {
	date := fsrs.DateOnly(today).Format("2006-01-02")

	due, err := d.db.ListDueTopics(date)
	if err != nil {
		return "", fmt.Errorf("list due topics: %w", err)
	}
	if len(due) == 0 {
		return "", nil
	}

	overdue := 0
	for i := range due {
		status := fsrs.ReviewStatus(due[i].State().NextReview, today)
		if status.Urgency == fsrs.UrgencyOverdue {
			overdue++
		}
	}

	msg := fmt.Sprintf("%d topic(s) due for review", len(due))
	if overdue > 0 {
		msg += fmt.Sprintf(" (%d overdue)", overdue)
	}
	return msg, nil
}
