// Package bot wires Telegram updates to dialog workers: it owns the
// session table, serializes each user's events, drives the worker
// lifecycle and commits completed results.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shelfbot/collection"
	coreconfig "github.com/m3rciful/shelfbot/core/config"
	"github.com/m3rciful/shelfbot/core/logger"
	tghelpers "github.com/m3rciful/shelfbot/core/telegram/helpers"
	"github.com/m3rciful/shelfbot/dialog"
	"github.com/m3rciful/shelfbot/session"
	"github.com/m3rciful/shelfbot/worker"
)

// WorkerClient is the slice of the runtime client the router needs.
type WorkerClient interface {
	Create(ctx context.Context, template, workerID string, env [][2]string) error
	InvocationKey(ctx context.Context, template, workerID string) (string, error)
	InvokeStep(ctx context.Context, template, workerID, key string, ev dialog.Event) (dialog.Outcome, error)
	Delete(ctx context.Context, template, workerID string) error
}

// Sender delivers a message to the update's chat. Split out so tests can
// run the router without a live bot.
type Sender func(c tele.Context, text string) error

// Router drives dialogs: one session per user, one worker per session,
// all of a user's events applied in arrival order.
type Router struct {
	cfg       *coreconfig.Config
	sessions  *session.Store
	lanes     *session.Lanes
	workers   WorkerClient
	collector *collection.Collector
	send      Sender
}

func NewRouter(cfg *coreconfig.Config, sessions *session.Store, lanes *session.Lanes, workers WorkerClient, collector *collection.Collector) *Router {
	return &Router{
		cfg:       cfg,
		sessions:  sessions,
		lanes:     lanes,
		workers:   workers,
		collector: collector,
		send: func(c tele.Context, text string) error {
			return tghelpers.SendText(c, text)
		},
	}
}

// InProgress reports whether the user has an active dialog.
func (r *Router) InProgress(userID int64) bool {
	_, ok := r.sessions.Get(userID)
	return ok
}

// StartDialog begins a new dialog of the given type for the sender.
// The whole start sequence runs on the user's lane so it cannot
// interleave with other events from the same user.
func (r *Router) StartDialog(c tele.Context, dtype dialog.Type) error {
	if c.Sender() == nil {
		return nil
	}
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)
	return r.runOnLane(ctx, userID, func(ctx context.Context) error {
		return r.start(ctx, c, userID, dtype)
	})
}

// HandleDialog forwards the update to the user's active dialog worker.
func (r *Router) HandleDialog(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	userID := c.Sender().ID
	ev, ok := eventFromUpdate(c)
	if !ok {
		return nil
	}
	reset := isReset(c)
	ctx := tghelpers.BuildContext(c)
	return r.runOnLane(ctx, userID, func(ctx context.Context) error {
		if reset {
			return r.reset(ctx, c, userID)
		}
		return r.forward(ctx, c, userID, ev)
	})
}

// Reset cancels the user's active dialog, if any.
func (r *Router) Reset(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)
	return r.runOnLane(ctx, userID, func(ctx context.Context) error {
		return r.reset(ctx, c, userID)
	})
}

// runOnLane appends fn to the user's FIFO lane and returns once it is
// queued. Updates are dispatched synchronously at the bot loop, so queue
// order is delivery order; the worker calls themselves run off the loop.
// Failures inside fn are logged by the dialog pipeline, not returned:
// the handler has long since moved on by the time fn runs.
func (r *Router) runOnLane(ctx context.Context, userID int64, fn func(context.Context) error) error {
	return r.lanes.Enqueue(ctx, userID, func(ctx context.Context) error {
		_ = fn(ctx)
		return nil
	})
}

func (r *Router) start(ctx context.Context, c tele.Context, userID int64, dtype dialog.Type) error {
	if _, active := r.sessions.Get(userID); active {
		_ = r.send(c, "You already have an active dialog. Send /reset to cancel it.")
		return nil
	}

	template := r.template(dtype)
	workerID := worker.NewID()
	start := time.Now()

	env := [][2]string{{"TELEGRAM_TOKEN", r.cfg.Telegram.Token}}
	if err := r.workers.Create(ctx, template, workerID, env); err != nil {
		r.logDialog(ctx, "dialog.start", dtype, workerID, start, err)
		return err
	}

	key, err := r.workers.InvocationKey(ctx, template, workerID)
	if err != nil {
		_ = r.workers.Delete(ctx, template, workerID)
		r.logDialog(ctx, "dialog.start", dtype, workerID, start, err)
		return err
	}

	outcome, err := r.workers.InvokeStep(ctx, template, workerID, key, dialog.Start())
	if err != nil {
		_ = r.workers.Delete(ctx, template, workerID)
		r.logDialog(ctx, "dialog.start", dtype, workerID, start, err)
		return err
	}

	if err := r.sessions.Put(session.Session{
		UserID:     userID,
		DialogType: dtype,
		Template:   template,
		WorkerID:   workerID,
		CreatedAt:  time.Now(),
	}); err != nil {
		_ = r.workers.Delete(ctx, template, workerID)
		r.logDialog(ctx, "dialog.start", dtype, workerID, start, err)
		return err
	}

	r.logDialog(ctx, "dialog.start", dtype, workerID, start, nil)
	if outcome.Message != "" {
		_ = r.send(c, outcome.Message)
	}
	return nil
}

func (r *Router) forward(ctx context.Context, c tele.Context, userID int64, ev dialog.Event) error {
	sess, ok := r.sessions.Get(userID)
	if !ok {
		// Session vanished between routing and lane execution (reset won
		// the race). The event is dropped, matching the no-session path.
		logger.Debug(ctx, "bot", "dialog.step",
			slog.String("status", "skip"),
			slog.String("reason", "no_session"),
		)
		return nil
	}

	start := time.Now()
	key, err := r.workers.InvocationKey(ctx, sess.Template, sess.WorkerID)
	if err != nil {
		r.logDialog(ctx, "dialog.step", sess.DialogType, sess.WorkerID, start, err)
		return err
	}

	outcome, err := r.workers.InvokeStep(ctx, sess.Template, sess.WorkerID, key, ev)
	if err != nil {
		r.logDialog(ctx, "dialog.step", sess.DialogType, sess.WorkerID, start, err)
		return err
	}

	if outcome.Result != nil {
		if err := r.collector.Commit(ctx, userID, *outcome.Result); err != nil {
			// Session stays; terminal workers return the same result
			// again, so the user's next message retries the commit.
			r.logDialog(ctx, "dialog.step", sess.DialogType, sess.WorkerID, start, err)
			return err
		}
		if outcome.Message != "" {
			_ = r.send(c, outcome.Message)
		}
		r.dispose(ctx, userID, sess)
		r.logDialog(ctx, "dialog.step", sess.DialogType, sess.WorkerID, start, nil,
			slog.Bool("terminal", true))
		return nil
	}

	if outcome.Message != "" {
		_ = r.send(c, outcome.Message)
	}
	r.logDialog(ctx, "dialog.step", sess.DialogType, sess.WorkerID, start, nil)
	return nil
}

func (r *Router) reset(ctx context.Context, c tele.Context, userID int64) error {
	sess, ok := r.sessions.Get(userID)
	if !ok {
		_ = r.send(c, "No active dialog")
		return nil
	}
	r.dispose(ctx, userID, sess)
	logger.Info(ctx, "bot", "dialog.reset",
		slog.String("status", "ok"),
		slog.String("dialog_type", string(sess.DialogType)),
		slog.String("worker_id", sess.WorkerID),
	)
	_ = r.send(c, "Dialog reset")
	return nil
}

// dispose removes the session first so no further events reach the
// worker, then deletes the worker best-effort.
func (r *Router) dispose(ctx context.Context, userID int64, sess session.Session) {
	r.sessions.Remove(userID)
	_ = r.workers.Delete(ctx, sess.Template, sess.WorkerID)
}

func (r *Router) template(dtype dialog.Type) string {
	switch dtype {
	case dialog.TypeBook:
		return r.cfg.Runtime.Templates.Book
	case dialog.TypeMovie:
		return r.cfg.Runtime.Templates.Movie
	default:
		return r.cfg.Runtime.Templates.Quote
	}
}

func (r *Router) logDialog(ctx context.Context, event string, dtype dialog.Type, workerID string, start time.Time, err error, extras ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("dialog_type", string(dtype)),
		slog.String("worker_id", workerID),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		var we *worker.Error
		if errors.As(err, &we) {
			attrs = append(attrs,
				slog.String("err_code", we.Code()),
				slog.Bool("retryable", we.Retryable()),
			)
		}
		attrs = append(attrs, extras...)
		logger.Error(ctx, "bot", event, attrs...)
		return
	}
	attrs = append(attrs, extras...)
	logger.Info(ctx, "bot", event, attrs...)
}

func eventFromUpdate(c tele.Context) (dialog.Event, bool) {
	if cb := c.Callback(); cb != nil {
		data := strings.TrimPrefix(cb.Data, "\f")
		return dialog.CallbackProvided(data), true
	}
	if text := c.Text(); text != "" {
		return dialog.TextProvided(text), true
	}
	return dialog.Event{}, false
}

func isReset(c tele.Context) bool {
	if c.Callback() != nil {
		return false
	}
	return strings.HasPrefix(c.Text(), "/reset")
}
