package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nnikolash/go-shstate"
	"github.com/nnikolash/go-shstate/examples/counter"
	"github.com/nnikolash/go-shstate/tk"
	"github.com/nnikolash/go-shstate/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newCounterCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "counter",
		Short: "Counter driven from stdin: '+' and '-' click the buttons, 'click <widget>' and 'list' work on any widget, 'q' quits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			zl, err := o.logger()
			if err != nil {
				return err
			}
			defer zl.Sync() //nolint:errcheck

			return runCounter(cmd.Context(), o, zl, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runCounter(ctx context.Context, o *options, zl *zap.Logger, in io.Reader, out io.Writer) error {
	app := tk.NewApp(utils.NewZapLogger(zl))

	st, err := o.newStore(app, zl)
	if err != nil {
		return err
	}
	if err := shstate.Init(ctx, st, counter.New); err != nil {
		return err
	}

	v := counter.Build(app.NewWindow("counter"), st)
	shstate.BindView(st, v.Display, func(c *counter.Counter, _ *tk.Label) error {
		_, err := fmt.Fprintf(out, "count: %d\n", c.Value())
		return err
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(app.Run(ctx))
	})

	g.Go(func() error {
		defer cancel()

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			switch cmd := strings.TrimSpace(scanner.Text()); {
			case cmd == "+":
				app.Post(v.Inc.Click)
			case cmd == "-":
				app.Post(v.Dec.Click)
			case cmd == "q":
				return nil
			case cmd == "list":
				app.Post(func() { listWidgets(app, out) })
			case strings.HasPrefix(cmd, "click "):
				name := strings.TrimSpace(strings.TrimPrefix(cmd, "click "))
				app.Post(func() { clickWidget(app, name, out) })
			case cmd == "":
			default:
				app.Post(func() { fmt.Fprintf(out, "unknown command %q\n", cmd) })
			}
		}

		return errors.Wrap(scanner.Err(), "failed to read commands")
	})

	err = g.Wait()
	drain(app, st)

	return err
}

// listWidgets prints every widget with its label, sorted by name.
func listWidgets(app *tk.App, out io.Writer) {
	widgets := app.Widgets()

	names := make([]string, 0, len(widgets))
	for name := range widgets {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		fmt.Fprintf(out, "%v %q\n", widgets[name], widgets[name].Label())
	}
}

func clickWidget(app *tk.App, name string, out io.Writer) {
	w := app.Widget(name)
	if w == nil {
		fmt.Fprintf(out, "no widget %q\n", name)
		return
	}

	w.Activate()
}

// drain finishes the work left once the loop has returned: binding tasks
// and the events they dispatched, until neither produces more.
func drain(app *tk.App, st *shstate.Store) {
	for st.Wait(); app.RunPending() > 0; st.Wait() {
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
