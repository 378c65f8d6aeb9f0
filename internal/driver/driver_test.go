package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-testutil"
)

type countingManager struct {
	ticks  int
	failAt int
	err    error
}

func (m *countingManager) Tick(context.Context) error {
	m.ticks++
	if m.failAt > 0 && m.ticks >= m.failAt {
		return m.err
	}
	return nil
}

func TestMudDriver_Tick(t *testing.T) {
	boom := errors.New("boom")

	tests := map[string]struct {
		first     *countingManager
		second    *countingManager
		expErr    error
		expSecond int
	}{
		"all tick": {
			first:     &countingManager{},
			second:    &countingManager{},
			expSecond: 1,
		},
		"failure stops the round": {
			first:  &countingManager{failAt: 1, err: boom},
			second: &countingManager{},
			expErr: boom,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewMudDriver([]Manager{tt.first, tt.second})

			err := d.Tick(context.Background())

			testutil.AssertEqual(t, "err", errors.Is(err, tt.expErr), true)
			testutil.AssertEqual(t, "second ticks", tt.second.ticks, tt.expSecond)
		})
	}
}

func TestMudDriver_StopsOnShutdown(t *testing.T) {
	m := &countingManager{failAt: 3, err: game.ErrShutdown}
	d := NewMudDriver([]Manager{m}, WithTickLength(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- d.Start(context.Background()) }()

	select {
	case err := <-done:
		testutil.AssertEqual(t, "shutdown", errors.Is(err, game.ErrShutdown), true)
		testutil.AssertEqual(t, "ticks", m.ticks, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestMudDriver_StopsOnCancel(t *testing.T) {
	d := NewMudDriver([]Manager{&countingManager{}}, WithTickLength(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	testutil.AssertEqual(t, "failed", d.Start(ctx) != nil, false)
}

func TestWithTickLength(t *testing.T) {
	tests := map[string]struct {
		length time.Duration
		exp    time.Duration
	}{
		"set":      {length: time.Second, exp: time.Second},
		"zero":     {length: 0, exp: DefaultTickLength},
		"negative": {length: -time.Second, exp: DefaultTickLength},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewMudDriver(nil, WithTickLength(tt.length))
			testutil.AssertEqual(t, "tick length", d.tickLength, tt.exp)
		})
	}
}
