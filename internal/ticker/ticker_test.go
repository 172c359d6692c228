package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/event"
)

type sleeper struct {
	ticks  int
	budget int
	t      *Ticker
	total  time.Duration
}

func (s *sleeper) onTick(payload any) error {
	s.ticks++
	s.total += payload.(time.Duration)
	if s.ticks == s.budget {
		s.t.RemoveEventListener(event.Tick, s, s.onTick)
	}
	return nil
}

func TestTickerSleepsWhenNothingSubscribed(t *testing.T) {
	tk := New(event.NewListenerPool(4), 60)
	require.False(t, tk.Awake())
	require.Equal(t, time.Second/60, tk.Frame())

	s := &sleeper{budget: 3, t: tk}
	require.NoError(t, tk.AddEventListener(event.Tick, s, s.onTick))
	require.True(t, tk.Awake())

	for i := 0; i < 5; i++ {
		require.NoError(t, tk.Step())
	}
	require.Equal(t, 3, s.ticks)
	require.Equal(t, 3*tk.Frame(), s.total)
	require.False(t, tk.Awake())
	require.Equal(t, uint64(5), tk.Frames())
	require.Equal(t, 5*tk.Frame(), tk.Elapsed())
}

func TestTickOrderFollowsRegistration(t *testing.T) {
	tk := New(event.NewListenerPool(4), 0)
	var order []string
	require.NoError(t, tk.AddEventListener(event.Tick, "b", func(any) error { order = append(order, "b"); return nil }))
	require.NoError(t, tk.AddEventListener(event.Tick, "a", func(any) error { order = append(order, "a"); return nil }))
	require.NoError(t, tk.Tick(-time.Second))
	require.Equal(t, []string{"b", "a"}, order)
	require.Equal(t, time.Duration(0), tk.Elapsed())
	require.Equal(t, 2, tk.Subscribers())
}

func TestAnimatingLastsWhileSubscribersAsk(t *testing.T) {
	tk := New(event.NewListenerPool(4), 60)
	require.False(t, tk.Animating())

	frames := 3
	handler := func(any) error {
		if frames > 0 {
			frames--
			tk.KeepAwake()
		}
		return nil
	}
	require.NoError(t, tk.AddEventListener(event.Tick, tk, handler))
	require.True(t, tk.Animating(), "a new subscriber gets a frame")

	for i := 0; i < 3; i++ {
		require.NoError(t, tk.Step())
		require.True(t, tk.Animating())
	}
	require.NoError(t, tk.Step())
	require.False(t, tk.Animating())
	require.True(t, tk.Awake(), "subscribed but settled")
}
