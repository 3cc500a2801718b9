package main

import (
	"context"
	"net/http"
	"time"

	"github.com/nnikolash/go-shstate"
	"github.com/nnikolash/go-shstate/examples/server"
	"github.com/nnikolash/go-shstate/tk"
	"github.com/nnikolash/go-shstate/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Label showing the latest HTTP request; try GET /anything and GET /state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			zl, err := o.logger()
			if err != nil {
				return err
			}
			defer zl.Sync() //nolint:errcheck

			return runServe(cmd.Context(), o, zl)
		},
	}

	cmd.Flags().String("addr", ":3000", "listen address")
	utils.Must(o.v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr")))

	return cmd
}

func runServe(ctx context.Context, o *options, zl *zap.Logger) error {
	l := utils.NewZapLogger(zl)
	app := tk.NewApp(l)

	st, err := o.newStore(app, zl)
	if err != nil {
		return err
	}
	if st.Discipline() == shstate.Exclusive {
		return errors.New("serve mutates state from server goroutines and needs blocking or cooperative access")
	}
	if err := shstate.Init(ctx, st, server.NewState); err != nil {
		return err
	}

	lbl := server.Build(app, st)
	shstate.BindView(st, lbl, func(s *server.State, _ *tk.Label) error {
		if s.Requests > 0 {
			l.Infof("Label now shows %q", s.Message)
		}
		return nil
	})

	srv := &http.Server{
		Addr:              o.v.GetString("serve.addr"),
		Handler:           newHTTPHandler(st, l),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(app.Run(ctx))
	})

	g.Go(func() error {
		l.Infof("Listening on %v", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	drain(app, st)

	return err
}

func newHTTPHandler(st *shstate.Store, l utils.Logger) http.Handler {
	return otelhttp.NewHandler(
		server.NewHandler(st, l),
		"shstate-demo",
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
	)
}
