package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"reserver_notifier/internal/app"
	"reserver_notifier/internal/domain/notification"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Horizon is how far ahead a scan arms one-shot jobs. Anything later waits for a
// following daily scan.
const Horizon = 24 * time.Hour

var ErrAlreadyRunning = errors.New("notification scheduler already running")
var ErrNotRunning = errors.New("notification scheduler not running")

// Dispatcher is the job body run when a notification fires.
type Dispatcher interface {
	Dispatch(ctx context.Context, id int64) error
}

// ScanResult summarizes the decisions of one scan.
type ScanResult struct {
	Immediate        int // Due now, dispatch job enqueued
	Scheduled        int // One-shot job armed within the horizon
	Deferred         int // Beyond the horizon
	Skipped          int // No computable send time
	AlreadyScheduled int // Another scan already armed a job
	Errors           int
}

type scheduledJob struct {
	engine  *cron.Cron
	entryID cron.EntryID
	at      time.Time
}

type NotificationScheduler struct {
	mu         sync.Mutex
	cronEngine *cron.Cron
	running    bool
	jobs       map[int64]scheduledJob // Keyed by notification ID

	dispatcher    Dispatcher
	notifRepo     notification.Repository
	logger        *logrus.Entry
	cronLogger    cron.Logger
	cronSpecDaily string
	location      *time.Location
	offset        time.Duration
	now           func() time.Time
}

type Option func(*NotificationScheduler)

// WithLocation sets the time zone of the daily trigger.
func WithLocation(loc *time.Location) Option {
	return func(s *NotificationScheduler) { s.location = loc }
}

// WithOffset shifts the scheduling window to (now+offset, now+24h+offset].
func WithOffset(d time.Duration) Option {
	return func(s *NotificationScheduler) { s.offset = d }
}

// WithClock replaces the time source used by scans.
func WithClock(now func() time.Time) Option {
	return func(s *NotificationScheduler) { s.now = now }
}

func NewNotificationScheduler(
	dispatcher Dispatcher,
	notifRepo notification.Repository,
	logger *logrus.Entry,
	cronSpecDaily string, // e.g., "0 8 * * *" (08:00 every day)
	opts ...Option,
) *NotificationScheduler {
	s := &NotificationScheduler{
		jobs:          make(map[int64]scheduledJob),
		dispatcher:    dispatcher,
		notifRepo:     notifRepo,
		logger:        logger,
		cronLogger:    cron.PrintfLogger(logger),
		cronSpecDaily: cronSpecDaily,
		location:      time.Local,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cronEngine = s.newEngine()
	return s
}

func (s *NotificationScheduler) newEngine() *cron.Cron {
	return cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(s.cronLogger),
		cron.WithChain(cron.Recover(s.cronLogger)), // A panicking job must not take the process down
	)
}

// Start clears stale is_active flags left by a previous process, starts the cron engine,
// runs an initial scan and registers the daily re-scan.
func (s *NotificationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.logger.Info("Starting notification scheduler...")

	dailySchedule, err := cron.ParseStandard(s.cronSpecDaily)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid daily scan spec %q: %w", s.cronSpecDaily, err)
	}

	reset, err := s.notifRepo.ResetActive(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to reset active notifications: %w", err)
	}
	s.logger.WithField("reset", reset).Info("Cleared stale active flags")

	dailyScan := cron.NewChain(cron.SkipIfStillRunning(s.cronLogger)).Then(cron.FuncJob(func() {
		s.logger.Info("Daily scan triggered")
		if _, err := s.CreateJobs(context.Background(), nil); err != nil {
			s.logger.WithError(err).Error("Daily scan failed")
		}
	}))

	s.cronEngine.Start()
	s.running = true
	s.mu.Unlock()

	if _, err := s.CreateJobs(ctx, nil); err != nil {
		s.logger.WithError(err).Error("Initial scan failed, waiting for the daily scan")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cronEngine.Schedule(dailySchedule, dailyScan)
	s.logger.WithField("spec", s.cronSpecDaily).Info("Notification scheduler started")
	return nil
}

// Scan evaluates every unsent notification.
func (s *NotificationScheduler) Scan(ctx context.Context) (ScanResult, error) {
	return s.CreateJobs(ctx, nil)
}

// CreateJobs evaluates the given notifications, or every unsent notification when notifs
// is nil. Due notifications get a dispatch job right away, notifications due within the
// horizon get a one-shot job at their send time, later ones are left for a future scan.
func (s *NotificationScheduler) CreateJobs(ctx context.Context, notifs []*notification.Notification) (ScanResult, error) {
	var res ScanResult

	if notifs == nil {
		var err error
		notifs, err = s.notifRepo.ListUnsent(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to list unsent notifications: %w", err)
		}
	}

	now := s.now()
	windowStart := now.Add(s.offset)
	windowEnd := now.Add(Horizon + s.offset)

	for _, n := range notifs {
		if n.IsSent {
			continue
		}
		log := s.logger.WithField("notification_id", n.ID)

		sendTime, ok := n.SendTime()
		if !ok {
			res.Skipped++
			app.RecordScanDecision("skipped")
			log.Warn("Notification has no send time, skipping")
			continue
		}
		log = log.WithField("send_time", sendTime.Format(time.RFC3339))

		switch {
		case !sendTime.After(now):
			s.arm(ctx, log, n.ID, now, &res, &res.Immediate, "immediate")
		case sendTime.After(windowStart) && !sendTime.After(windowEnd):
			s.arm(ctx, log, n.ID, sendTime, &res, &res.Scheduled, "scheduled")
		default:
			res.Deferred++
			app.RecordScanDecision("deferred")
			log.Debug("Send time beyond horizon, deferring")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"immediate":         res.Immediate,
		"scheduled":         res.Scheduled,
		"deferred":          res.Deferred,
		"skipped":           res.Skipped,
		"already_scheduled": res.AlreadyScheduled,
		"errors":            res.Errors,
	}).Info("Scan completed")
	return res, nil
}

// arm claims the notification for scheduling and adds a one-shot job at the given time.
func (s *NotificationScheduler) arm(ctx context.Context, log *logrus.Entry, id int64, at time.Time, res *ScanResult, counter *int, action string) {
	claimed, err := s.notifRepo.ClaimSchedule(ctx, id)
	if err != nil {
		res.Errors++
		log.WithError(err).Error("Failed to claim notification for scheduling")
		return
	}
	if !claimed {
		res.AlreadyScheduled++
		app.RecordScanDecision("already_scheduled")
		log.Debug("Notification already scheduled")
		return
	}

	if err := s.scheduleOnce(id, at); err != nil {
		res.Errors++
		log.WithError(err).Error("Failed to add dispatch job")
		if errRelease := s.notifRepo.ReleaseSchedule(ctx, id); errRelease != nil {
			log.WithError(errRelease).Error("Failed to release schedule claim")
		}
		return
	}
	*counter++
	app.RecordScanDecision(action)
	log.WithField("run_at", at.Format(time.RFC3339)).Info("Dispatch job added")
}

func (s *NotificationScheduler) scheduleOnce(id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	if _, ok := s.jobs[id]; ok {
		return fmt.Errorf("dispatch job for notification %d already armed", id)
	}
	entryID := s.cronEngine.Schedule(newOnceSchedule(at), s.dispatchJob(id))
	s.jobs[id] = scheduledJob{engine: s.cronEngine, entryID: entryID, at: at}
	return nil
}

func (s *NotificationScheduler) dispatchJob(id int64) cron.Job {
	return cron.FuncJob(func() {
		defer s.forget(id)
		log := s.logger.WithField("notification_id", id)
		defer func() {
			// A panicking dispatch must not leave the notification armed forever.
			if r := recover(); r != nil {
				s.releaseSchedule(log, id)
				panic(r)
			}
		}()
		log.Info("Dispatch job started")

		err := s.dispatcher.Dispatch(context.Background(), id)
		switch {
		case err == nil:
		case errors.Is(err, app.ErrAlreadySent):
			log.Info("Dispatch job skipped, notification already sent")
		case app.IsResolutionError(err):
			log.WithError(err).Warn("Dispatch job skipped, recipients unresolvable")
			s.releaseSchedule(log, id)
		default:
			log.WithError(err).Error("Dispatch job failed")
			s.releaseSchedule(log, id)
		}
	})
}

func (s *NotificationScheduler) releaseSchedule(log *logrus.Entry, id int64) {
	if err := s.notifRepo.ReleaseSchedule(context.Background(), id); err != nil {
		log.WithError(err).Error("Failed to release schedule claim")
	}
}

// forget drops the bookkeeping and the spent cron entry of a finished job.
func (s *NotificationScheduler) forget(id int64) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()
	if ok {
		job.engine.Remove(job.entryID)
	}
}

// Pending returns the notification IDs with an armed dispatch job and their fire times.
func (s *NotificationScheduler) Pending() map[int64]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]time.Time, len(s.jobs))
	for id, job := range s.jobs {
		out[id] = job.at
	}
	return out
}

// Stop stops the cron engine and waits for running jobs to complete.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.logger.Info("Stopping notification scheduler...")
	engine := s.cronEngine
	s.running = false
	s.mu.Unlock()

	ctx := engine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()

	s.mu.Lock()
	s.jobs = make(map[int64]scheduledJob)
	s.mu.Unlock()
	s.logger.Info("Notification scheduler gracefully stopped.")
}

// Restart drains the running scheduler and starts over with a fresh cron engine.
func (s *NotificationScheduler) Restart(ctx context.Context) error {
	s.Stop()
	s.mu.Lock()
	s.cronEngine = s.newEngine()
	s.mu.Unlock()
	return s.Start(ctx)
}
