package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/citysafe/inspection-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultResolution how often due jobs are checked
const DefaultResolution = 30 * time.Second

// Job a periodic background job, driven either by Interval or by a cron Spec
type Job struct {
	Name      string
	Interval  time.Duration
	Spec      string
	Handler   func(ctx context.Context) error
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	LastError error

	entryID cron.EntryID
}

// Scheduler runs interval jobs in-process on a single goroutine and cron jobs on robfig/cron.
// A job never overlaps with itself.
type Scheduler struct {
	jobs       []*Job
	mu         sync.RWMutex
	resolution time.Duration
	now        func() time.Time
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a scheduler checking due jobs every resolution (DefaultResolution when zero)
func New(resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Scheduler{
		resolution: resolution,
		now:        time.Now,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		ctx:        context.Background(),
	}
}

// Register adds a job. With runNow it fires on the first tick, otherwise after one interval.
func (s *Scheduler) Register(name string, interval time.Duration, runNow bool, handler func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.now().Add(interval)
	if runNow {
		next = s.now()
	}
	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Interval: interval,
		Handler:  handler,
		NextRun:  next,
	})

	logger.GetLogger().Info().Str("job", name).Dur("interval", interval).Msg("scheduled job registered")
}

// RegisterCron adds a job fired on a standard five-field cron spec evaluated in loc
func (s *Scheduler) RegisterCron(name, spec string, loc *time.Location, handler func(ctx context.Context) error) error {
	job := &Job{Name: name, Spec: spec, Handler: handler}

	id, err := s.cron.AddFunc(fmt.Sprintf("CRON_TZ=%s %s", loc.String(), spec), func() {
		s.mu.RLock()
		ctx := s.ctx
		s.mu.RUnlock()
		s.run(ctx, job, s.now())
	})
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	s.mu.Lock()
	job.entryID = id
	job.NextRun = s.cron.Entry(id).Schedule.Next(s.now())
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	logger.GetLogger().Info().Str("job", name).Str("spec", spec).Str("tz", loc.String()).Msg("cron job registered")
	return nil
}

// Start runs the scheduler loop until ctx is done or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	ctx = s.ctx
	s.mu.Unlock()
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick(ctx, s.now())

		ticker := time.NewTicker(s.resolution)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.tick(ctx, now)
			}
		}
	}()
	logger.GetLogger().Info().Msg("scheduler started")
}

// Stop cancels the loop and waits for running jobs to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
	logger.GetLogger().Info().Msg("scheduler stopped")
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if job.Spec != "" || now.Before(job.NextRun) {
			continue
		}
		s.run(ctx, job, now)
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job, now time.Time) {
	err := job.Handler(ctx)

	next := now.Add(job.Interval)
	if job.Spec != "" {
		// cron advances the entry before invoking it
		next = s.cron.Entry(job.entryID).Next
	}

	s.mu.Lock()
	job.LastError = err
	job.LastRun = now
	job.NextRun = next
	job.RunCount++
	s.mu.Unlock()

	if err != nil {
		logger.GetLogger().Error().Err(err).Str("job", job.Name).Msg("scheduled job failed")
	}
}

// JobInfo job state for the health endpoint
type JobInfo struct {
	Name      string    `json:"name"`
	Interval  string    `json:"interval,omitempty"`
	Spec      string    `json:"spec,omitempty"`
	LastRun   time.Time `json:"last_run"`
	NextRun   time.Time `json:"next_run"`
	RunCount  int64     `json:"run_count"`
	LastError *string   `json:"last_error,omitempty"`
}

// Jobs returns a snapshot of registered jobs
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{
			Name:     j.Name,
			Spec:     j.Spec,
			LastRun:  j.LastRun,
			NextRun:  j.NextRun,
			RunCount: j.RunCount,
		}
		if j.Spec == "" {
			info.Interval = j.Interval.String()
		}
		if j.LastError != nil {
			msg := j.LastError.Error()
			info.LastError = &msg
		}
		result = append(result, info)
	}
	return result
}
