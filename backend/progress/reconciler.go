package progress

import (
	"context"
	"sync"
	"time"

	"lms/backend/models"
	"lms/backend/utils"
)

const (
	// Minimum spacing between accepted updates for one (user, lesson) pair.
	// Playback tick handlers call in far more often than the backend needs.
	defaultThrottle = 3 * time.Second
	// Quiet period before an accepted update is flushed to the store. A new
	// accepted update for the same pair replaces the pending one, so only
	// the last write within the window goes out.
	defaultDebounce = 2 * time.Second
)

// Update is one client-observed playback progress sample.
type Update struct {
	UserID           uint
	LessonID         uint
	Completed        *bool
	WatchTimeSeconds *int
}

// Awarder grants gamification points on a lesson-completion transition.
type Awarder interface {
	AwardLessonCompletion(ctx context.Context, userID, lessonID uint) error
}

// Notifier delivers the user-facing "lesson completed" notification.
type Notifier interface {
	LessonCompleted(ctx context.Context, userID, lessonID uint) error
}

// Timer is the stoppable handle returned by the scheduler.
type Timer interface {
	Stop() bool
}

type pendingWrite struct {
	update Update
	timer  Timer
}

type key struct {
	userID   uint
	lessonID uint
}

// Reconciler merges a stream of progress samples into one persisted record
// per (user, lesson) pair. Updates are throttled and debounced per pair, the
// stored record never regresses (completed stays true, watch time only
// grows), and the completion side effects (points award, notification) fire
// exactly once, on the stored false->true transition.
//
// Persistence is best-effort: every failure past Track is logged and
// swallowed, never surfaced to the caller.
//
// A Reconciler owns its throttle/debounce/notification state; construct one
// per server and inject it where needed.
type Reconciler struct {
	store  Store
	awards Awarder
	notify Notifier
	log    *utils.Logger

	throttle time.Duration
	debounce time.Duration
	now      func() time.Time
	after    func(d time.Duration, f func()) Timer

	mu           sync.Mutex
	lastAccepted map[key]time.Time
	pending      map[key]*pendingWrite
	notified     map[key]struct{}
	closed       bool

	writes sync.WaitGroup
}

// Option overrides a Reconciler default.
type Option func(*Reconciler)

// WithIntervals overrides the throttle and debounce durations.
func WithIntervals(throttle, debounce time.Duration) Option {
	return func(r *Reconciler) {
		r.throttle = throttle
		r.debounce = debounce
	}
}

// WithClock overrides the time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// WithScheduler overrides the delayed-call mechanism. Tests use this to run
// flushes deterministically.
func WithScheduler(after func(d time.Duration, f func()) Timer) Option {
	return func(r *Reconciler) {
		r.after = after
	}
}

func NewReconciler(store Store, awards Awarder, notify Notifier, log *utils.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:        store,
		awards:       awards,
		notify:       notify,
		log:          log.With("component", "progress_reconciler"),
		throttle:     defaultThrottle,
		debounce:     defaultDebounce,
		now:          time.Now,
		after:        stdAfter,
		lastAccepted: make(map[key]time.Time),
		pending:      make(map[key]*pendingWrite),
		notified:     make(map[key]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func stdAfter(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Track accepts or drops one progress sample. It reports whether the sample
// was accepted into the debounce window; a dropped sample is not an error.
// Track never blocks on the store.
func (r *Reconciler) Track(u Update) bool {
	k := key{userID: u.UserID, lessonID: u.LessonID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	now := r.now()
	if last, ok := r.lastAccepted[k]; ok && now.Sub(last) < r.throttle {
		return false
	}
	r.lastAccepted[k] = now

	if p, ok := r.pending[k]; ok {
		// Replace the pending write: last sample in the window wins.
		p.timer.Stop()
	}
	r.pending[k] = &pendingWrite{
		update: u,
		timer:  r.after(r.debounce, func() { r.flush(k) }),
	}
	return true
}

// Flush forces any pending write for the pair out immediately.
func (r *Reconciler) Flush(userID, lessonID uint) {
	r.flush(key{userID: userID, lessonID: lessonID})
}

// Close stops all timers and writes out every pending update. The Reconciler
// drops everything after Close.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	claimed := make([]Update, 0, len(r.pending))
	for k, p := range r.pending {
		p.timer.Stop()
		claimed = append(claimed, p.update)
		delete(r.pending, k)
	}
	r.mu.Unlock()

	for _, u := range claimed {
		r.write(u)
	}
	r.writes.Wait()
}

// BeginView marks the start of a viewing session on a lesson: completion
// notifications for the user's other lessons may fire again if a fresh
// completion transition occurs.
func (r *Reconciler) BeginView(userID, lessonID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.notified {
		if k.userID == userID && k.lessonID != lessonID {
			delete(r.notified, k)
		}
	}
}

// flush claims the pending write for the pair, if any, and persists it.
func (r *Reconciler) flush(k key) {
	r.mu.Lock()
	p, ok := r.pending[k]
	if ok {
		p.timer.Stop()
		delete(r.pending, k)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.write(p.update)
}

func (r *Reconciler) write(u Update) {
	r.writes.Add(1)
	defer r.writes.Done()

	ctx := context.Background()

	prev, err := r.store.Get(ctx, u.UserID, u.LessonID)
	if err != nil {
		r.log.Error("load lesson progress", "user_id", u.UserID, "lesson_id", u.LessonID, "error", err)
		return
	}

	rec := prev
	wasCompleted := prev != nil && prev.Completed
	if rec == nil {
		rec = &models.LessonProgress{UserID: u.UserID, LessonID: u.LessonID}
	}

	// completed = incoming ?? previous ?? false, and never true->false.
	if u.Completed != nil && *u.Completed {
		rec.Completed = true
	}
	if u.WatchTimeSeconds != nil && *u.WatchTimeSeconds > rec.WatchTimeSeconds {
		rec.WatchTimeSeconds = *u.WatchTimeSeconds
	}

	now := r.now()
	completedNow := rec.Completed && !wasCompleted
	if completedNow {
		t := now
		rec.CompletedAt = &t
	}
	rec.LastWatchedAt = now

	if err := r.store.Upsert(ctx, rec); err != nil {
		r.log.Error("persist lesson progress", "user_id", u.UserID, "lesson_id", u.LessonID, "error", err)
		return
	}

	if !completedNow {
		return
	}

	if r.awards != nil {
		if err := r.awards.AwardLessonCompletion(ctx, u.UserID, u.LessonID); err != nil {
			r.log.Error("award completion points", "user_id", u.UserID, "lesson_id", u.LessonID, "error", err)
		}
	}
	r.notifyOnce(ctx, u.UserID, u.LessonID)
}

func (r *Reconciler) notifyOnce(ctx context.Context, userID, lessonID uint) {
	if r.notify == nil {
		return
	}

	k := key{userID: userID, lessonID: lessonID}
	r.mu.Lock()
	_, seen := r.notified[k]
	if !seen {
		r.notified[k] = struct{}{}
	}
	r.mu.Unlock()
	if seen {
		return
	}

	if err := r.notify.LessonCompleted(ctx, userID, lessonID); err != nil {
		r.log.Error("send completion notification", "user_id", userID, "lesson_id", lessonID, "error", err)
	}
}
