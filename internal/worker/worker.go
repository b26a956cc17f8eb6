package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const jobAutoApprove = "affiliate_auto_approve"

// AutoApprover promotes affiliate applications whose auto-approval time has passed.
type AutoApprover interface {
	ApproveDue(ctx context.Context) (int, error)
}

type JobRecorder interface {
	JobRun(job string, duration time.Duration, success bool)
}

// Worker runs the periodic jobs of the API process.
type Worker struct {
	sched    gocron.Scheduler
	approver AutoApprover
	metrics  JobRecorder
	interval time.Duration
	log      logrus.FieldLogger
}

func New(approver AutoApprover, metrics JobRecorder, interval time.Duration, log logrus.FieldLogger) (*Worker, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "new scheduler")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		sched:    sched,
		approver: approver,
		metrics:  metrics,
		interval: interval,
		log:      log.WithField("component", "worker"),
	}, nil
}

// Start registers the jobs and starts the scheduler. The first auto-approval
// sweep runs immediately so rows that came due while the process was down are
// promoted on boot.
func (w *Worker) Start(ctx context.Context) error {
	_, err := w.sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.approveDue(ctx) }),
		gocron.WithName(jobAutoApprove),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return errors.Wrap(err, "register auto-approve job")
	}
	w.sched.Start()
	w.log.WithField("interval", w.interval.String()).Info("scheduler started")
	return nil
}

func (w *Worker) Shutdown() error {
	return w.sched.Shutdown()
}

func (w *Worker) approveDue(ctx context.Context) {
	start := time.Now()
	n, err := w.approver.ApproveDue(ctx)
	if w.metrics != nil {
		w.metrics.JobRun(jobAutoApprove, time.Since(start), err == nil)
	}
	if err != nil {
		w.log.WithError(err).Error("auto-approve sweep failed")
		return
	}
	if n > 0 {
		w.log.WithField("approved", n).Info("affiliate applications auto-approved")
	}
}
