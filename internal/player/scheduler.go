package player

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"scene-studio/internal/models"
	"scene-studio/internal/sequence"
)

// Metrics
var (
	scenesLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "studio_player_scene_loads_total", Help: "Scene load events emitted to the renderer"},
	)
	autoAdvances = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "studio_player_auto_advances_total", Help: "Timer-driven advances"},
	)
	missingScenes = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "studio_player_missing_scenes_total", Help: "Loads skipped because the scene reference was dangling"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(scenesLoaded, autoAdvances, missingScenes)
}

// Playback states.
const (
	StateStopped = "stopped"
	StatePlaying = "playing"
	StatePaused  = "paused"
)

// SequenceStore is the slice of the sequence store the player drives.
// Mutating calls are passed through so cursor correction happens inside
// the player's own critical section.
type SequenceStore interface {
	Get(id string) (*models.Sequence, error)
	Reorder(seq *models.Sequence, from, to int) error
	DeleteItem(seq *models.Sequence, itemID string) error
}

// SceneResolver maps a sequence item to its renderable state blob.
type SceneResolver interface {
	Resolve(item models.SequenceItem) (json.RawMessage, error)
}

// Cursor is the transient playback position. It is never persisted; it is
// born on play and dies on stop.
type Cursor struct {
	State      string `json:"state"`
	Index      int    `json:"index"`
	SequenceID string `json:"sequence_id"`          // the sequence play() was started for
	SelectedID string `json:"selected_id"`          // the sequence visible in the UI
	StartedAt  int64  `json:"started_at,omitempty"` // epoch ms of the play command
}

// Scheduler is the playback state machine. It owns the cursor and the one
// live auto-advance timer, re-reads the sequence from the store whenever a
// command or timer executes (never from a snapshot captured at arm time),
// and emits load-scene events toward the renderer through onLoad.
//
// The renderer is write-only from here: loads go out, nothing is read back.
type Scheduler struct {
	mu       sync.Mutex
	store    SequenceStore
	resolver SceneResolver
	onLoad   func(blob json.RawMessage)
	timers   Timers
	clock    Clock

	timer Timer
	gen   uint64 // bumped on every cancel; stale timer callbacks compare and bail

	selected   string // sequence shown in the UI
	startedFor string // sequence playback was started for ("" while stopped)
	state      string
	current    int
	startedAt  int64
}

func NewScheduler(store SequenceStore, resolver SceneResolver, onLoad func(json.RawMessage), timers Timers, clock Clock) *Scheduler {
	return &Scheduler{
		store:    store,
		resolver: resolver,
		onLoad:   onLoad,
		timers:   timers,
		clock:    clock,
		state:    StateStopped,
	}
}

// Status returns a snapshot of the cursor for the UI transport bar.
func (s *Scheduler) Status() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Cursor{
		State:      s.state,
		Index:      s.current,
		SequenceID: s.startedFor,
		SelectedID: s.selected,
		StartedAt:  s.startedAt,
	}
}

// Select changes which sequence the UI is looking at. While the engine is
// running this must NOT hijack playback: item 0 of the new sequence only
// auto-loads when playback was started for that same sequence (or was
// never started). Otherwise the old sequence keeps playing and the new
// one stays silent until an explicit play or jump.
func (s *Scheduler) Select(sequenceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == sequenceID {
		return
	}
	s.selected = sequenceID

	if s.state == StateStopped {
		return
	}
	if s.startedFor != "" && s.startedFor != sequenceID {
		// Guard case: user pressed play on a different sequence.
		return
	}

	s.startedFor = sequenceID
	s.current = 0
	s.cancelTimer()
	if s.state == StatePlaying {
		if seq := s.live(); seq != nil && len(seq.Items) > 0 {
			if s.emitLoad(seq) {
				s.armTimer(seq)
			}
		}
	}
}

// Play starts the selected sequence, or resumes a paused one. Starting a
// sequence with no items is a silent no-op.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePlaying:
		return
	case StatePaused:
		if s.selected != "" && s.selected != s.startedFor {
			// The user paused one sequence, picked another, and pressed
			// play: that is a fresh start, not a resume.
			s.startLocked(s.selected)
			return
		}
		s.state = StatePlaying
		if seq := s.live(); seq != nil && len(seq.Items) > 0 {
			if s.current >= len(seq.Items) {
				s.current = len(seq.Items) - 1
			}
			if s.emitLoad(seq) {
				s.armTimer(seq)
			}
		}
	default:
		s.startLocked(s.selected)
	}
}

func (s *Scheduler) startLocked(sequenceID string) {
	if sequenceID == "" {
		log.Println("⚠️ Play requested with no sequence selected")
		return
	}
	seq, err := s.store.Get(sequenceID)
	if err != nil {
		log.Printf("⚠️ Play requested for unloadable sequence %s: %v", sequenceID, err)
		return
	}
	if len(seq.Items) == 0 {
		// Nothing to play; stay stopped.
		return
	}

	s.state = StatePlaying
	s.startedFor = sequenceID
	s.current = 0
	s.startedAt = s.clock.Now().UnixMilli()
	if s.emitLoad(seq) {
		s.armTimer(seq)
	}
}

// Pause freezes the cursor and cancels the pending timer.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.cancelTimer()
	s.state = StatePaused
}

// Stop resets the cursor entirely.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	s.cancelTimer()
	s.state = StateStopped
	s.current = 0
	s.startedFor = ""
	s.startedAt = 0
}

// Next advances manually. Wrapping past the last item while playing stops
// the show: sequence end is terminal, not a loop. (Previous wraps freely;
// the asymmetry is deliberate.)
func (s *Scheduler) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked()
}

func (s *Scheduler) advanceLocked() {
	if s.state == StateStopped {
		return
	}
	seq := s.live()
	if seq == nil || len(seq.Items) == 0 {
		s.stopLocked()
		return
	}
	// The list may have shrunk since the timer was armed; never index a
	// stale position.
	if s.current >= len(seq.Items) {
		s.current = len(seq.Items) - 1
	}

	next := (s.current + 1) % len(seq.Items)
	if next == 0 && s.state == StatePlaying {
		s.stopLocked()
		return
	}

	s.current = next
	if s.state == StatePlaying {
		if s.emitLoad(seq) {
			s.armTimer(seq)
		} else {
			s.cancelTimer()
		}
	}
}

// Previous steps back, wrapping modulo the item count.
func (s *Scheduler) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	seq := s.live()
	if seq == nil || len(seq.Items) == 0 {
		s.stopLocked()
		return
	}
	n := len(seq.Items)
	s.current = (s.current - 1 + n) % n
	if s.state == StatePlaying {
		if s.emitLoad(seq) {
			s.armTimer(seq)
		} else {
			s.cancelTimer()
		}
	}
}

// JumpTo points the cursor at an explicit index of the selected sequence.
// This is a deliberate user action on a sequence they are looking at, so
// it rebinds playback to the selection (the sequence-switch guard does not
// apply) and, while playing, loads the target immediately.
func (s *Scheduler) JumpTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.selected
	if target == "" {
		target = s.startedFor
	}
	if target == "" {
		return
	}
	seq, err := s.store.Get(target)
	if err != nil || len(seq.Items) == 0 {
		return
	}
	if index < 0 || index >= len(seq.Items) {
		return
	}
	if s.state == StateStopped {
		// Cursor position is only meaningful once playback starts; play
		// always begins at 0.
		return
	}

	s.startedFor = target
	s.current = index
	if s.state == StatePlaying {
		if s.emitLoad(seq) {
			s.armTimer(seq)
		} else {
			s.cancelTimer()
		}
	}
}

// Reorder moves an item of the selected sequence and corrects the cursor
// in the same critical section, so a timer firing in between can never
// observe the array and the pointer out of sync.
func (s *Scheduler) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.selected
	if target == "" {
		return sequence.ErrSequenceNotFound
	}
	seq, err := s.store.Get(target)
	if err != nil {
		return err
	}
	if err := s.store.Reorder(seq, from, to); err != nil {
		return err
	}
	if s.startedFor == target && s.state != StateStopped {
		s.current = sequence.AdjustCursor(s.current, from, to)
	}
	return nil
}

// DeleteItem removes an item of the selected sequence and keeps the cursor
// sane: earlier deletions shift it down, deleting the playing item loads
// whatever slid into its slot, and emptying the sequence stops playback.
func (s *Scheduler) DeleteItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.selected
	if target == "" {
		return sequence.ErrSequenceNotFound
	}
	seq, err := s.store.Get(target)
	if err != nil {
		return err
	}
	idx := seq.ItemIndex(itemID)
	if err := s.store.DeleteItem(seq, itemID); err != nil {
		return err
	}

	if s.startedFor != target || s.state == StateStopped {
		return nil
	}
	if len(seq.Items) == 0 {
		s.stopLocked()
		return nil
	}
	switch {
	case idx < s.current:
		s.current--
	case idx == s.current:
		if s.current >= len(seq.Items) {
			s.current = len(seq.Items) - 1
		}
		if s.state == StatePlaying {
			if s.emitLoad(seq) {
				s.armTimer(seq)
			} else {
				s.cancelTimer()
			}
		}
	}
	return nil
}

// live re-reads the sequence playback is bound to. Always called at
// command/timer time, never cached across the suspension window.
func (s *Scheduler) live() *models.Sequence {
	if s.startedFor == "" {
		return nil
	}
	seq, err := s.store.Get(s.startedFor)
	if err != nil {
		log.Printf("⚠️ Playback sequence %s vanished: %v", s.startedFor, err)
		return nil
	}
	return seq
}

// emitLoad resolves the current item and pushes it to the renderer.
// A dangling reference is non-fatal: log, skip the load, and report false
// so the caller leaves the item waiting for a manual advance.
func (s *Scheduler) emitLoad(seq *models.Sequence) bool {
	if s.current < 0 || s.current >= len(seq.Items) {
		return false
	}
	item := seq.Items[s.current]
	blob, err := s.resolver.Resolve(item)
	if err != nil {
		missingScenes.Inc()
		log.Printf("⚠️ Scene for item %d of %s did not resolve: %v", s.current, seq.ID, err)
		return false
	}
	scenesLoaded.Inc()
	if s.onLoad != nil {
		s.onLoad(blob)
	}
	return true
}

// armTimer cancels any pending timer and conditionally arms a fresh
// one-shot for the current item. At most one timer is ever live; manual
// items arm nothing.
func (s *Scheduler) armTimer(seq *models.Sequence) {
	s.cancelTimer()
	if s.state != StatePlaying || s.current < 0 || s.current >= len(seq.Items) {
		return
	}
	item := seq.Items[s.current]
	if item.DurationMode != models.DurationSeconds || item.DurationSeconds <= 0 {
		return
	}
	gen := s.gen
	s.timer = s.timers.AfterFunc(time.Duration(item.DurationSeconds)*time.Second, func() {
		s.timerFire(gen)
	})
}

// cancelTimer stops the pending timer and invalidates any callback that
// already escaped Stop; a cancelled timer must never fire a stale next.
func (s *Scheduler) cancelTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) timerFire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != StatePlaying {
		return
	}
	autoAdvances.Inc()
	s.advanceLocked()
}
