// Package access provides the synchronization strategies a store can run
// under. A strategy is picked once per store and never mixed.
package access

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

type Discipline int

const (
	// Exclusive does no synchronization. Every access must come from the
	// goroutine running the host event loop. This is not checked.
	Exclusive Discipline = iota
	// Blocking guards the state with a mutex. Any goroutine may access it
	// and waits until the mutex is free. Not reentrant.
	Blocking
	// Cooperative guards the state with a semaphore and runs binding
	// invocations as separately scheduled tasks.
	Cooperative
)

var disciplineNames = map[Discipline]string{
	Exclusive:   "exclusive",
	Blocking:    "blocking",
	Cooperative: "cooperative",
}

func (d Discipline) String() string {
	if name, ok := disciplineNames[d]; ok {
		return name
	}
	return "unknown"
}

func (d Discipline) MarshalText() ([]byte, error) {
	if _, ok := disciplineNames[d]; !ok {
		return nil, errors.Errorf("unknown access discipline %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Discipline) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for k, name := range disciplineNames {
		if name == s {
			*d = k
			return nil
		}
	}
	return errors.Errorf("unknown access discipline %q", string(text))
}

// Guard serializes access to a store. Lock returns an error only when ctx
// is done before access was granted; in that case Unlock must not be called.
type Guard interface {
	Lock(ctx context.Context) error
	Unlock()
}

func New(d Discipline) Guard {
	switch d {
	case Exclusive:
		return exclusiveGuard{}
	case Blocking:
		return &blockingGuard{}
	case Cooperative:
		return &cooperativeGuard{sem: semaphore.NewWeighted(1)}
	default:
		panic(errors.Errorf("unknown access discipline %d", int(d)))
	}
}

type exclusiveGuard struct{}

func (exclusiveGuard) Lock(ctx context.Context) error { return nil }
func (exclusiveGuard) Unlock()                        {}

type blockingGuard struct {
	mu sync.Mutex
}

func (g *blockingGuard) Lock(ctx context.Context) error {
	g.mu.Lock()
	return nil
}

func (g *blockingGuard) Unlock() {
	g.mu.Unlock()
}

type cooperativeGuard struct {
	sem *semaphore.Weighted
}

func (g *cooperativeGuard) Lock(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "failed to acquire state access")
	}
	return nil
}

func (g *cooperativeGuard) Unlock() {
	g.sem.Release(1)
}

var (
	_ Guard = exclusiveGuard{}
	_ Guard = &blockingGuard{}
	_ Guard = &cooperativeGuard{}
)
