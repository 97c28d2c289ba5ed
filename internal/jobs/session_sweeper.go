package jobs

import (
	"log"
	"sync"
	"time"

	"github.com/lurelabs/lure/internal/engine"
)

// SessionSweeperJob removes idle sessions on a fixed interval. Swept
// sessions are dropped without a report; reports are only produced by
// in-conversation or explicit termination.
type SessionSweeperJob struct {
	engine   *engine.Engine
	logger   *log.Logger
	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSessionSweeperJob creates a new session sweeper. ttl <= 0 falls back
// to the engine's configured idle timeout.
func NewSessionSweeperJob(e *engine.Engine, logger *log.Logger, interval, ttl time.Duration) *SessionSweeperJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionSweeperJob{
		engine:   e,
		logger:   logger,
		interval: interval,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background job.
func (j *SessionSweeperJob) Start() {
	j.wg.Add(1)
	go j.run()
	j.logger.Printf("SessionSweeperJob: started (interval=%v, ttl=%v)", j.interval, j.ttl)
}

// Stop gracefully stops the background job.
func (j *SessionSweeperJob) Stop() {
	close(j.stopCh)
	j.wg.Wait()
	j.logger.Println("SessionSweeperJob: stopped")
}

func (j *SessionSweeperJob) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

func (j *SessionSweeperJob) sweep() {
	removed := j.engine.Cleanup(j.ttl)
	if removed > 0 {
		j.logger.Printf("SessionSweeperJob: swept %d idle sessions (%d active)", removed, j.engine.ActiveSessions())
	}
}
