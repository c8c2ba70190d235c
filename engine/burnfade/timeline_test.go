package burnfade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimelineValidation(t *testing.T) {
	_, err := NewTimeline(ModeOnce, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewTimeline(Mode("bounce"), time.Second)
	assert.Error(t, err)

	tl, err := NewTimeline(ModeLoop, 2*time.Second)
	require.NoError(t, err)
	assert.False(t, tl.Playing())
	assert.Equal(t, float32(0), tl.Progress())
	assert.Equal(t, 2*time.Second, tl.Duration())
	assert.Equal(t, ModeLoop, tl.Mode())
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"once", "loop", "pingpong"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	_, err := ParseMode("")
	assert.Error(t, err)
}

func TestTimelinePausedDoesNotAdvance(t *testing.T) {
	tl, err := NewTimeline(ModeOnce, time.Second)
	require.NoError(t, err)
	assert.Equal(t, float32(0), tl.Advance(0.5))

	tl.Play()
	assert.Equal(t, float32(0), tl.Advance(0))
	assert.Equal(t, float32(0), tl.Advance(-1))
}

func TestTimelineOnce(t *testing.T) {
	tl, err := NewTimeline(ModeOnce, 2*time.Second)
	require.NoError(t, err)
	tl.Play()

	assert.Equal(t, float32(0.5), tl.Advance(1))
	assert.Equal(t, float32(1), tl.Advance(1.5))
	assert.False(t, tl.Playing())
	assert.Equal(t, float32(1), tl.Advance(1))

	// playing a finished one-shot starts over
	tl.Play()
	assert.Equal(t, float32(0.25), tl.Advance(0.5))
}

func TestTimelineLoop(t *testing.T) {
	tl, err := NewTimeline(ModeLoop, time.Second)
	require.NoError(t, err)
	tl.Play()

	assert.Equal(t, float32(0.25), tl.Advance(0.25))
	assert.Equal(t, float32(0.25), tl.Advance(1))
	assert.Equal(t, float32(0.75), tl.Advance(0.5))
	assert.True(t, tl.Playing())
}

func TestTimelinePingPong(t *testing.T) {
	tl, err := NewTimeline(ModePingPong, time.Second)
	require.NoError(t, err)
	tl.Play()

	assert.Equal(t, float32(0.75), tl.Advance(0.75))
	assert.Equal(t, float32(0.75), tl.Advance(0.5))
	assert.Equal(t, float32(0.25), tl.Advance(0.5))
	assert.Equal(t, float32(0.5), tl.Advance(0.75))
}

func TestTimelineSeekAndReset(t *testing.T) {
	tl, err := NewTimeline(ModeLoop, time.Second)
	require.NoError(t, err)

	tl.Seek(0.5)
	assert.Equal(t, float32(0.5), tl.Progress())
	tl.Seek(2)
	assert.Equal(t, float32(1), tl.Progress())
	tl.Seek(-1)
	assert.Equal(t, float32(0), tl.Progress())

	tl.Seek(0.5)
	tl.Play()
	tl.Reset()
	assert.Equal(t, float32(0), tl.Progress())
	assert.True(t, tl.Playing())
}

func TestTimelineToggle(t *testing.T) {
	tl, err := NewTimeline(ModeLoop, time.Second)
	require.NoError(t, err)
	assert.True(t, tl.Toggle())
	assert.True(t, tl.Playing())
	assert.False(t, tl.Toggle())
	assert.False(t, tl.Playing())
}

func TestTimelineSetDurationKeepsProgress(t *testing.T) {
	tl, err := NewTimeline(ModeOnce, 2*time.Second)
	require.NoError(t, err)
	tl.Seek(0.5)

	require.NoError(t, tl.SetDuration(4*time.Second))
	assert.Equal(t, 4*time.Second, tl.Duration())
	assert.Equal(t, float32(0.5), tl.Progress())

	assert.ErrorIs(t, tl.SetDuration(-time.Second), ErrInvalidDuration)
}

func TestTimelineSetMode(t *testing.T) {
	tl, err := NewTimeline(ModePingPong, time.Second)
	require.NoError(t, err)
	tl.Play()
	tl.Advance(1.5) // now travelling backwards at 0.5

	tl.SetMode(ModeLoop)
	assert.Equal(t, ModeLoop, tl.Mode())
	assert.Equal(t, float32(0.75), tl.Advance(0.25))
}
