package sweeper

import (
	"context"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/db/mongodb"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	defaultSweepSpec = "@every 5m"
	sweepTimeout     = 30 * time.Second
)

// Sweeper periodically releases timed-out Aid claims. One sweep pass, not
// per-job timers: the number of in-flight fallback claims is small and a
// sweep needs no state to survive process restarts.
type Sweeper struct {
	cron   *cron.Cron
	cfg    *config.Config
	conn   *mongodb.Conn
	jobsUC jobs.UseCase
	logger logger.Logger
}

func NewSweeper(cfg *config.Config, conn *mongodb.Conn, jobsUC jobs.UseCase, log logger.Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(),
		cfg:    cfg,
		conn:   conn,
		jobsUC: jobsUC,
		logger: log,
	}
}

func (s *Sweeper) Start() error {
	spec := s.cfg.Aid.SweepSpec
	if spec == "" {
		spec = defaultSweepSpec
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Infof("aid release sweeper started, schedule: %s", spec)
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Infof("aid release sweeper stopped")
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	// Refresh store reachability so the service recovers from a degraded
	// connection without a restart.
	if err := s.conn.Ping(ctx); err != nil {
		s.logger.Warnf("sweep skipped, store unreachable: %v", err)
		return
	}
	if _, err := s.jobsUC.ReleaseTimedOutJobs(ctx); err != nil {
		s.logger.Errorf("release sweep failed: %v", err)
	}
}
