package editor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/automata-diagram/pkg/graph"
)

func TestPostBeforeMount(t *testing.T) {
	l := NewLoop(New(graph.New()), 4)
	err := l.Post(context.Background(), AddNode{})
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestLoopSerializesPosts(t *testing.T) {
	ed := New(graph.New())
	l := NewLoop(ed, 8)

	var (
		mu    sync.Mutex
		snaps []Snapshot
	)
	mounted := make(chan struct{})
	var once sync.Once
	ed.OnChange(func(s Snapshot) {
		once.Do(func() { close(mounted) })
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	<-mounted

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Post(ctx, AddNode{}))
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) == 11
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.ErrorIs(t, l.Post(context.Background(), AddNode{}), ErrStopped)

	mu.Lock()
	defer mu.Unlock()
	last := snaps[len(snaps)-1].Graph
	assert.Equal(t, 10, last.NodeCount())
	ids := graph.NewIDSet()
	for _, n := range last.Nodes() {
		require.False(t, ids.Has(n.ID))
		ids.Add(n.ID)
	}
}

func TestRunTwice(t *testing.T) {
	l := NewLoop(New(graph.New()), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.Error(t, l.Run(context.Background()))
}

// Posts racing a shutdown either fail or get applied; none are lost.
func TestAcceptedPostsSurviveShutdown(t *testing.T) {
	for round := 0; round < 50; round++ {
		l := NewLoop(New(graph.New()), 2)
		ctx, cancel := context.WithCancel(context.Background())
		go l.Run(ctx)
		require.Eventually(t, func() bool {
			return l.Post(context.Background(), CommandFunc(func(*Editor) error { return nil })) == nil
		}, time.Second, time.Millisecond)

		var accepted, applied atomic.Int64
		count := CommandFunc(func(*Editor) error {
			applied.Add(1)
			return nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					if l.Post(context.Background(), count) == nil {
						accepted.Add(1)
					}
				}
			}()
		}
		cancel()
		wg.Wait()
		<-l.Done()

		assert.Equal(t, accepted.Load(), applied.Load(), "round %d", round)
	}
}
