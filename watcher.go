package courtwatch

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/hazyhaar/courtwatch/idgen"
	"github.com/hazyhaar/courtwatch/internal/broadcast"
	"github.com/hazyhaar/courtwatch/internal/delta"
	"github.com/hazyhaar/courtwatch/internal/fetch"
	"github.com/hazyhaar/courtwatch/internal/historian"
	"github.com/hazyhaar/courtwatch/internal/parse"
	"github.com/hazyhaar/courtwatch/internal/push"
	"github.com/hazyhaar/courtwatch/internal/queue"
	"github.com/hazyhaar/courtwatch/internal/scheduler"
	"github.com/hazyhaar/courtwatch/internal/store"
	"github.com/hazyhaar/courtwatch/internal/watchlist"
)

// Watcher is the top-level orchestrator: it owns the Fetcher, DeltaEngine,
// Historian, and WatchlistProcessor, and drives one tick's A→B→C→D→E /
// A→B→C→F pipeline on the Scheduler's ticker. Mirrors
// domwatch.Watcher's shape — a single struct gluing internal/ packages
// together behind Start/Stop — generalized for courtwatch's fixed
// two-request/one-board domain instead of domwatch's many-page browser
// fleet.
type Watcher struct {
	cfg Config

	store       *store.Store
	fetcher     *fetch.Fetcher
	delta       *delta.Engine
	historian   *historian.Historian
	watchlist   *watchlist.Processor
	pusher      push.Pusher
	broadcaster broadcast.Broadcaster
	ids         idgen.Generator
	log         *slog.Logger

	sched *scheduler.Scheduler

	mu      sync.Mutex
	etag    string
	lastMod string
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a Watcher. db must already have store.ApplySchema applied. A
// nil pusher/broadcaster defaults to the Nop implementation, which discards
// everything (push-gateway credentials are optional).
func New(cfg Config, db *sql.DB, logger *slog.Logger, pusher push.Pusher, broadcaster broadcast.Broadcaster) *Watcher {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if pusher == nil {
		pusher = push.NopPusher{}
	}
	if broadcaster == nil {
		broadcaster = broadcast.NopBroadcaster{}
	}

	s := store.NewStore(db)
	w := &Watcher{
		cfg:         cfg,
		store:       s,
		fetcher:     fetch.New(cfg.Fetch),
		delta:       delta.New(s, logger),
		historian:   historian.New(s, logger, func(string, int64) string { return idgen.New() }),
		watchlist:   watchlist.New(s, logger),
		pusher:      pusher,
		broadcaster: broadcaster,
		ids:         idgen.Default,
		log:         logger,
	}
	w.sched = scheduler.New(w.Tick, cfg.Scheduler, logger)
	return w
}

// SeedWatchlists inserts every configured WatchlistSeed that has no active
// watchlist yet for its (deviceId, caseNumber) pair. Safe to call on every
// startup.
func (w *Watcher) SeedWatchlists(ctx context.Context, now time.Time) error {
	for _, seed := range w.cfg.Watchlists {
		row := seedRow(w.ids(), seed, now.UnixMilli())
		if err := w.store.InsertWatchlistIfAbsent(ctx, row); err != nil {
			return fmt.Errorf("courtwatch: seed watchlist %s/%s: %w", seed.DeviceID, seed.CaseNumber, err)
		}
	}
	return nil
}

// Start launches the tick scheduler and the two auxiliary jobs (5-minute
// snapshot, daily 02:00 cleanup) in the background and returns
// immediately, mirroring domwatch.Watcher.Start's non-blocking shape.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.mu.Lock()
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	go scheduler.RunEvery(ctx, 5*time.Minute, w.runSnapshotJob, w.log, "snapshot")
	go scheduler.RunDailyAt(ctx, 2, 0, w.runCleanupJob, w.log, "cleanup")
	go func() {
		defer close(done)
		w.sched.Run(ctx)
	}()
}

// Stop cancels the scheduler context and waits for the drain the
// Scheduler itself performs before returning.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

// Tick runs one full pipeline pass: Fetcher → Parser → DeltaEngine →
// (Historian ‖ QueueBuilder → WatchlistProcessor) → (Pusher, Broadcaster).
// A non-nil return drives the Scheduler into backoff.
func (w *Watcher) Tick(ctx context.Context, now time.Time) error {
	nowMillis := now.UnixMilli()

	w.mu.Lock()
	etag, lastMod := w.etag, w.lastMod
	w.mu.Unlock()

	xhr, err := w.fetcher.FetchXHR(ctx, w.cfg.XHRURL, etag, lastMod)
	if err != nil {
		return fmt.Errorf("courtwatch: fetch xhr: %w", err)
	}
	if xhr.Skipped {
		w.log.Debug("courtwatch: xhr not modified, tick skipped")
		return nil
	}

	w.mu.Lock()
	w.etag, w.lastMod = xhr.ETag, xhr.LastMod
	w.mu.Unlock()

	page, err := w.fetcher.FetchPage(ctx, w.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("courtwatch: fetch page: %w", err)
	}

	courts, cards, err := parse.Parse(xhr.Rows, page, originOf(w.cfg.BaseURL), w.cfg.BaseURL, now)
	if err != nil {
		return fmt.Errorf("courtwatch: parse: %w", err)
	}

	res, err := w.delta.Apply(ctx, nowMillis, courts, cards)
	if err != nil {
		return fmt.Errorf("courtwatch: delta apply: %w", err)
	}

	if err := w.historian.Record(ctx, nowMillis, nowMillis, res.Visible); err != nil {
		w.log.Error("courtwatch: historian record", "error", err)
	}

	groups := queue.Build(res.Visible)
	for _, alert := range w.watchlist.Process(ctx, nowMillis, res.Visible, groups) {
		w.dispatch(ctx, nowMillis, alert)
	}

	if len(res.Changed) > 0 {
		evt := broadcast.Event{Type: broadcast.EventCourtDelta, Courts: res.Changed, ScrapedAt: nowMillis}
		if err := w.broadcaster.Broadcast(ctx, evt); err != nil {
			w.log.Error("courtwatch: broadcast", "error", err)
		}
	}

	return nil
}

// dispatch sends one alert's push notification and records the attempt in
// NotificationLog regardless of outcome. A failed send never mutates the
// watchlist's own state fields.
func (w *Watcher) dispatch(ctx context.Context, nowMillis int64, alert watchlist.Alert) {
	dev, err := w.store.GetDevice(ctx, alert.Watchlist.DeviceID)
	if err != nil {
		w.log.Error("courtwatch: get device", "deviceId", alert.Watchlist.DeviceID, "error", err)
		return
	}
	if dev == nil || !dev.Active || dev.PushToken == "" {
		return
	}

	title, body := renderAlert(alert)
	sendErr := w.pusher.Send(ctx, push.Message{
		Token: dev.PushToken,
		Title: title,
		Body:  body,
		Data:  alertData(alert),
	})

	entry := store.NotificationLogEntry{
		ID:               w.ids(),
		DeviceID:         alert.Watchlist.DeviceID,
		CaseNumber:       alert.Watchlist.CaseNumber,
		NotificationType: string(alert.Type),
		CourtNumber:      alert.CourtNumber,
		Success:          sendErr == nil,
		SentAt:           nowMillis,
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
		w.log.Warn("courtwatch: push send failed", "deviceId", entry.DeviceID, "caseNumber", entry.CaseNumber, "error", sendErr)
	}
	if err := w.store.InsertNotificationLog(ctx, entry); err != nil {
		w.log.Error("courtwatch: insert notification log", "error", err)
	}
}

func (w *Watcher) runSnapshotJob(ctx context.Context, now time.Time) error {
	courts, err := w.store.ListVisibleCourts(ctx)
	if err != nil {
		return fmt.Errorf("courtwatch: snapshot list visible: %w", err)
	}
	snap := store.CourtSnapshot{ID: w.ids(), Courts: courts, TakenAt: now.UnixMilli()}
	return w.store.WriteCourtSnapshot(ctx, snap)
}

// runCleanupJob is the daily no-op placeholder. Nothing in the schema ages
// out notification_log or court_snapshots rows; they accumulate.
func (w *Watcher) runCleanupJob(context.Context, time.Time) error {
	return nil
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
