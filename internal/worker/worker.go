package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/jwebster45206/scriptevent/internal/events"
	"github.com/jwebster45206/scriptevent/internal/queue"
	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/world"
)

// ErrLockLost is returned once another worker owns the world lock.
var ErrLockLost = errors.New("world lock lost")

const (
	defaultPoll    = 100 * time.Millisecond
	defaultLockTTL = 30 * time.Second
)

// Options tunes a worker. Zero values select the defaults.
type Options struct {
	ID      string
	Poll    time.Duration
	LockTTL time.Duration
	// Batch caps the events taken from the queue per step; 0 takes all.
	Batch int
	// Rate limits delivered events per second; 0 disables the limit.
	Rate  float64
	Burst int
	Now   func() time.Time
}

// Worker drives one world: it delivers queued events to its entities and
// fires due timers. A world lock in Redis keeps a second worker off the
// same world.
type Worker struct {
	id          string
	queue       *queue.EventQueue
	world       *world.World
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	limiter     *rate.Limiter
	opts        Options
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(q *queue.EventQueue, w *world.World, redisClient *redis.Client, log *slog.Logger, opts Options) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.ID == "" {
		opts.ID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if opts.Poll <= 0 {
		opts.Poll = defaultPoll
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	wk := &Worker{
		id:          opts.ID,
		queue:       q,
		world:       w,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		limiter:     rate.NewLimiter(limit, opts.Burst),
		opts:        opts,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	w.OnSay = wk.publishSpeech
	return wk
}

// ID returns the worker's identifier, also stored in the world lock.
func (w *Worker) ID() string {
	return w.id
}

// Start takes the world lock and processes until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id, "world_id", w.world.ID.String())

	locked, err := w.acquireWorldLock()
	if err != nil {
		return fmt.Errorf("failed to acquire world lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("world %s is held by another worker", w.world.ID)
	}
	defer w.releaseWorldLock()

	ticker := time.NewTicker(w.opts.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		case <-ticker.C:
			err := w.Step(w.ctx)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, ErrLockLost):
				w.log.Error("World lock lost, stopping", "worker_id", w.id, "world_id", w.world.ID.String())
				return err
			default:
				// Continue processing even on error
				w.log.Error("Error processing world step", "error", err, "worker_id", w.id)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// Step renews the world lock, then delivers the queued events and fires
// due timers. Nothing is touched once the lock belongs to someone else.
func (w *Worker) Step(ctx context.Context) error {
	if err := w.refreshWorldLock(ctx); err != nil {
		return err
	}

	if paused, err := w.queue.Paused(ctx, w.world.ID); err != nil {
		w.log.Warn("Failed to read world pause", "error", err, "worker_id", w.id)
	} else {
		w.world.SetPaused(paused)
	}

	queued, err := w.queue.Dequeue(ctx, w.world.ID, w.opts.Batch)
	if err != nil {
		return fmt.Errorf("failed to dequeue events: %w", err)
	}

	for i, ev := range queued {
		if err := w.limiter.Wait(ctx); err != nil {
			w.requeue(queued[i:])
			return err
		}
		w.deliver(ctx, ev)
	}

	if fired := w.world.Tick(w.opts.Now()); fired > 0 {
		if err := w.broadcaster.PublishTick(ctx, w.world.ID, fired); err != nil {
			w.log.Error("Failed to publish tick event", "error", err)
		}
	}
	return nil
}

// deliver sends one queued event. Standard event names go through the
// event table; anything else is a custom "ON <name>" block.
func (w *Worker) deliver(ctx context.Context, ev queue.QueuedEvent) {
	var (
		res script.Result
		err error
	)
	if e, ok := script.ParseEvent(ev.Event); ok {
		res, err = w.world.Send(ev.Entity, e, ev.Params)
	} else {
		res, err = w.world.SendNamed(ev.Entity, ev.Event, ev.Params)
	}

	if err != nil {
		w.log.Warn("Queued event failed",
			"worker_id", w.id,
			"entity", ev.Entity,
			"event", ev.Event,
			"error", err)
		if pubErr := w.broadcaster.PublishFailed(ctx, w.world.ID, ev.Entity, ev.Event, err.Error()); pubErr != nil {
			w.log.Error("Failed to publish failure event", "error", pubErr)
		}
		return
	}

	w.log.Debug("Queued event delivered",
		"entity", ev.Entity,
		"event", ev.Event,
		"result", res.String(),
		"latency_ms", w.opts.Now().Sub(ev.QueuedAt).Milliseconds())
	if err := w.broadcaster.PublishDispatched(ctx, w.world.ID, ev.Entity, ev.Event, res.String()); err != nil {
		w.log.Error("Failed to publish dispatch event", "error", err)
	}
}

// requeue puts undelivered events back at the tail of the queue.
func (w *Worker) requeue(rest []queue.QueuedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, ev := range rest {
		if err := w.queue.Enqueue(ctx, w.world.ID, ev); err != nil {
			w.log.Error("Failed to re-queue event", "error", err, "entity", ev.Entity)
		}
	}
}

func (w *Worker) publishSpeech(line world.Line) {
	if err := w.broadcaster.PublishSpeech(w.ctx, w.world.ID, line.Speaker, line.Text, line.Localized); err != nil {
		w.log.Error("Failed to publish speech", "error", err)
	}
}

func (w *Worker) lockKey() string {
	return fmt.Sprintf("world-lock:%s", w.world.ID.String())
}

// acquireWorldLock returns true if the lock was acquired, false if another
// worker holds it.
func (w *Worker) acquireWorldLock() (bool, error) {
	return w.redisClient.SetNX(w.ctx, w.lockKey(), w.id, w.opts.LockTTL).Result()
}

var refreshScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

func (w *Worker) refreshWorldLock(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, w.redisClient, []string{w.lockKey()}, w.id, w.opts.LockTTL.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to refresh world lock: %w", err)
	}
	if n == 0 {
		return errors.Wrapf(ErrLockLost, "world %s", w.world.ID)
	}
	return nil
}

// releaseWorldLock only deletes the lock if we own it.
func (w *Worker) releaseWorldLock() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, w.redisClient, []string{w.lockKey()}, w.id).Err(); err != nil {
		w.log.Error("Failed to release world lock", "error", err, "world_id", w.world.ID.String())
	}
}
