package access_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nnikolash/go-shstate/access"
	"github.com/stretchr/testify/require"
)

func TestDiscipline_Text(t *testing.T) {
	t.Parallel()

	for _, d := range []access.Discipline{access.Exclusive, access.Blocking, access.Cooperative} {
		text, err := d.MarshalText()
		require.NoError(t, err)

		var parsed access.Discipline
		require.NoError(t, parsed.UnmarshalText(text))
		require.Equal(t, d, parsed)
	}

	var d access.Discipline
	require.NoError(t, d.UnmarshalText([]byte(" Blocking ")))
	require.Equal(t, access.Blocking, d)

	require.Error(t, d.UnmarshalText([]byte("optimistic")))
	require.Equal(t, "unknown", access.Discipline(42).String())

	_, err := access.Discipline(42).MarshalText()
	require.Error(t, err)
}

func TestNew_UnknownDiscipline(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { access.New(access.Discipline(42)) })
}

func TestGuard_MutualExclusion(t *testing.T) {
	t.Parallel()

	for _, d := range []access.Discipline{access.Blocking, access.Cooperative} {
		d := d
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()

			g := access.New(d)
			var inside, maxInside, total int32
			var wg sync.WaitGroup

			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						if err := g.Lock(context.Background()); err != nil {
							t.Error(err)
							return
						}
						n := atomic.AddInt32(&inside, 1)
						if n > atomic.LoadInt32(&maxInside) {
							atomic.StoreInt32(&maxInside, n)
						}
						total++
						atomic.AddInt32(&inside, -1)
						g.Unlock()
					}
				}()
			}

			wg.Wait()
			require.Equal(t, int32(1), maxInside)
			require.Equal(t, int32(16*50), total)
		})
	}
}

func TestGuard_CooperativeLockHonoursContext(t *testing.T) {
	t.Parallel()

	g := access.New(access.Cooperative)
	require.NoError(t, g.Lock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Lock(ctx), context.DeadlineExceeded)

	g.Unlock()
	require.NoError(t, g.Lock(context.Background()))
	g.Unlock()
}

func TestGuard_Exclusive(t *testing.T) {
	t.Parallel()

	g := access.New(access.Exclusive)
	require.NoError(t, g.Lock(context.Background()))
	// No synchronization: a second lock does not wait.
	require.NoError(t, g.Lock(context.Background()))
	g.Unlock()
	g.Unlock()
}

func TestTasks_WaitIncludesNestedTasks(t *testing.T) {
	t.Parallel()

	var tasks access.Tasks
	var done int32

	for i := 0; i < 5; i++ {
		tasks.Go(func() {
			tasks.Go(func() {
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&done, 1)
			})
			atomic.AddInt32(&done, 1)
		})
	}

	tasks.Wait()
	require.Equal(t, int32(10), atomic.LoadInt32(&done))
}
