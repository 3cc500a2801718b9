package access

import (
	"golang.org/x/sync/errgroup"
)

// Tasks runs binding invocations of a cooperative store. A scheduled task
// always runs to completion: there is no way to cancel it.
type Tasks struct {
	g errgroup.Group
}

func (t *Tasks) Go(f func()) {
	t.g.Go(func() error {
		f()
		return nil
	})
}

// Wait blocks until every task scheduled so far, including tasks scheduled
// by running tasks, has finished. It must not race with Go calls made from
// outside of tasks.
func (t *Tasks) Wait() {
	_ = t.g.Wait()
}
