package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/onemapl3/twitter-meme-analysis/internal/handlers"
	"github.com/onemapl3/twitter-meme-analysis/pkg/logging"
)

// Scheduler drives periodic analysis runs
type Scheduler struct {
	logger   logging.Logger
	runner   *handlers.AnalysisRunner
	interval time.Duration
	ticker   *time.Ticker
	stopChan chan bool
}

// NewScheduler creates a scheduler around the shared analysis runner.
func NewScheduler(runner *handlers.AnalysisRunner, interval time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		logger:   logger,
		runner:   runner,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduled runs
func (s *Scheduler) Start() {
	s.logger.WithFields(logging.Fields{
		"interval": s.interval,
	}).Info("Starting analysis scheduler")

	s.ticker = time.NewTicker(s.interval)
	go s.runLoop()

	// Run an initial analysis shortly after startup so the query surface
	// has data without waiting a full interval.
	go func() {
		time.Sleep(10 * time.Second)
		s.runOnce("initial")
	}()
}

// Stop stops the scheduled runs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping analysis scheduler")
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

func (s *Scheduler) runLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.runOnce("scheduled")
		case <-s.stopChan:
			s.logger.Info("Stopping analysis run loop")
			return
		}
	}
}

func (s *Scheduler) runOnce(trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_, err := s.runner.RunOnce(ctx)
	if errors.Is(err, handlers.ErrRunInProgress) {
		s.logger.WithField("trigger", trigger).Warn("Skipping analysis run, previous run still active")
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("trigger", trigger).Error("Failed to run analysis")
	}
}

// TriggerAnalysis manually triggers a run outside the schedule.
func (s *Scheduler) TriggerAnalysis() error {
	s.logger.Info("Manually triggering analysis run")
	_, err := s.runner.RunOnce(context.Background())
	return err
}
