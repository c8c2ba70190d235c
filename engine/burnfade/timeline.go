package burnfade

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/burnfade/common"
)

// ErrInvalidDuration is returned when a timeline is given a non-positive duration.
var ErrInvalidDuration = errors.New("timeline duration must be positive")

// Mode selects how a Timeline behaves when it reaches the end of its duration.
type Mode string

const (
	// ModeOnce plays from 0 to 1 and stops.
	ModeOnce Mode = "once"
	// ModeLoop wraps back to 0 after reaching 1.
	ModeLoop Mode = "loop"
	// ModePingPong reverses direction at each end.
	ModePingPong Mode = "pingpong"
)

// ParseMode converts a configuration string into a Mode.
//
// Parameters:
//   - s: one of "once", "loop", "pingpong"
//
// Returns:
//   - Mode: the parsed mode
//   - error: an error if s is not a known mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOnce, ModeLoop, ModePingPong:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown timeline mode %q", s)
	}
}

// Timeline drives burn progress over time. It is safe for concurrent use: the tick
// goroutine advances it while input callbacks seek, play and pause.
type Timeline struct {
	mu       sync.Mutex
	mode     Mode
	duration float64 // seconds
	elapsed  float64 // seconds, always within [0, duration]
	reverse  bool
	playing  bool
}

// NewTimeline creates a paused timeline at progress 0.
//
// Parameters:
//   - mode: the end-of-timeline behavior
//   - duration: the time taken to go from progress 0 to 1
//
// Returns:
//   - *Timeline: the timeline
//   - error: ErrInvalidDuration if duration <= 0, or an error for an unknown mode
func NewTimeline(mode Mode, duration time.Duration) (*Timeline, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%v: %w", duration, ErrInvalidDuration)
	}
	return &Timeline{mode: mode, duration: duration.Seconds()}, nil
}

func (t *Timeline) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	// a finished one-shot restarts from the beginning
	if t.mode == ModeOnce && t.elapsed >= t.duration {
		t.elapsed = 0
	}
	t.playing = true
}

func (t *Timeline) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
}

// Toggle flips between playing and paused.
//
// Returns:
//   - bool: true if the timeline is now playing
func (t *Timeline) Toggle() bool {
	t.mu.Lock()
	playing := t.playing
	t.mu.Unlock()
	if playing {
		t.Pause()
		return false
	}
	t.Play()
	return true
}

func (t *Timeline) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// Reset rewinds to progress 0 and forward direction without changing play state.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = 0
	t.reverse = false
}

// Seek jumps to the given progress, clamped to [0, 1].
//
// Parameters:
//   - progress: the target progress
func (t *Timeline) Seek(progress float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = float64(common.Clamp(progress, 0, 1)) * t.duration
}

// Progress returns the current progress in [0, 1].
func (t *Timeline) Progress() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress()
}

func (t *Timeline) progress() float32 {
	return float32(t.elapsed / t.duration)
}

func (t *Timeline) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// SetMode changes the end-of-timeline behavior, keeping the current progress.
func (t *Timeline) SetMode(mode Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	if mode != ModePingPong {
		t.reverse = false
	}
}

func (t *Timeline) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Duration(t.duration * float64(time.Second))
}

// SetDuration changes the duration, keeping the current progress.
//
// Parameters:
//   - duration: the new duration
//
// Returns:
//   - error: ErrInvalidDuration if duration <= 0
func (t *Timeline) SetDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("%v: %w", duration, ErrInvalidDuration)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.elapsed / t.duration
	t.duration = duration.Seconds()
	t.elapsed = p * t.duration
	return nil
}

// Advance moves the timeline forward by deltaTime seconds if it is playing.
//
// Parameters:
//   - deltaTime: elapsed wall time in seconds
//
// Returns:
//   - float32: the progress after advancing
func (t *Timeline) Advance(deltaTime float32) float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing || deltaTime <= 0 {
		return t.progress()
	}
	dt := float64(deltaTime)

	switch t.mode {
	case ModeOnce:
		t.elapsed += dt
		if t.elapsed >= t.duration {
			t.elapsed = t.duration
			t.playing = false
		}
	case ModeLoop:
		t.elapsed = math.Mod(t.elapsed+dt, t.duration)
	case ModePingPong:
		period := 2 * t.duration
		pos := t.elapsed
		if t.reverse {
			pos = period - t.elapsed
		}
		pos = math.Mod(pos+dt, period)
		if pos <= t.duration {
			t.elapsed = pos
			t.reverse = false
		} else {
			t.elapsed = period - pos
			t.reverse = true
		}
	}
	return t.progress()
}
