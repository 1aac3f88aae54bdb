package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dunebench/engine/internal/repository"
)

// TypeWatchdog is the asynq task type used to make sure every active
// game's turn goroutine is actually running. A healthy server answers
// every request before its phase deadline (the blocked cachedAgentProvider
// handles that in-process); this task only matters after a crash, when an
// active game's goroutine no longer exists to pick its turn back up.
const TypeWatchdog = "game:watchdog"

// WatchdogPayload names the game to check.
type WatchdogPayload struct {
	GameID string
}

// TimerService schedules and runs the periodic watchdog that keeps every
// active game's turn loop alive across restarts, using asynq as the task
// queue/scheduler rather than a hand-rolled ticker goroutine.
type TimerService struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	phaseSvc  *PhaseService
	gameRepo  repository.GameRepository
}

// NewTimerService creates a TimerService backed by the given Redis address.
func NewTimerService(redisAddr string, phaseSvc *PhaseService, gameRepo repository.GameRepository) *TimerService {
	opt := asynq.RedisClientOpt{Addr: redisAddr}
	return &TimerService{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		phaseSvc:  phaseSvc,
		gameRepo:  gameRepo,
	}
}

// NewHandler returns the asynq.Mux the worker server dispatches
// TypeWatchdog tasks to.
func (t *TimerService) NewHandler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeWatchdog, t.handleWatchdog)
	return mux
}

func (t *TimerService) handleWatchdog(ctx context.Context, task *asynq.Task) error {
	var p WatchdogPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal watchdog payload: %w", err)
	}
	t.phaseSvc.EnsureRunning(p.GameID)
	return nil
}

// RunScheduler enqueues one watchdog task per active game every interval,
// until ctx is cancelled.
func (t *TimerService) RunScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Dur("interval", interval).Msg("Game watchdog scheduler started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.enqueueWatchdogs(ctx)
		}
	}
}

func (t *TimerService) enqueueWatchdogs(ctx context.Context) {
	games, err := t.gameRepo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Watchdog: failed to list active games")
		return
	}
	for _, g := range games {
		payload, err := json.Marshal(WatchdogPayload{GameID: g.ID})
		if err != nil {
			continue
		}
		if _, err := t.client.Enqueue(asynq.NewTask(TypeWatchdog, payload)); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("Failed to enqueue watchdog task")
		}
	}
}

// Close releases the asynq client connection.
func (t *TimerService) Close() error {
	return t.client.Close()
}
