package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/logowire/internal/console"
	"github.com/danmuck/logowire/internal/dispatch"
	"github.com/danmuck/logowire/internal/frontend"
	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/observability"
	"github.com/danmuck/logowire/internal/transport"
)

type surfaceOptions struct {
	headless bool
	out      io.Writer
	in       io.Reader
	settings console.Settings
}

// surface returns the builder for one session plus a func that reports the
// headless buffer contents after the session.
func (o surfaceOptions) surface() (frontend.Surface, func()) {
	if !o.headless {
		return func(replies console.Replies) dispatch.Frontend {
			return console.NewTerminal(o.out, o.in, replies, o.settings)
		}, func() {}
	}
	var buf *console.Buffer
	build := func(replies console.Replies) dispatch.Frontend {
		buf = console.NewBuffer(replies, o.settings)
		return buf
	}
	report := func() {
		if buf != nil {
			fmt.Fprintln(o.out, buf.Text())
		}
	}
	return build, report
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		headless    bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a frontend that renders commands from a kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			so := surfaceOptions{
				headless: headless,
				out:      cmd.OutOrStdout(),
				in:       os.Stdin,
				settings: opts.cfg.Console,
			}
			if cmd.Flags().Changed("metrics-addr") {
				opts.cfg.MetricsAddr = metricsAddr
			}
			if opts.cfg.MetricsAddr != "" {
				go func() {
					if err := observability.ListenAndServe(ctx, opts.cfg.MetricsAddr, observability.NewRouter("logowire")); err != nil {
						logs.Errf("metrics endpoint err=%v", err)
					}
				}()
			}
			err := serve(ctx, opts.cfg, so)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "keep text in memory and print it when each session ends")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /health and /metrics on this address")
	return cmd
}

func serve(ctx context.Context, cfg appConfig, so surfaceOptions) error {
	fopts := frontend.Options{OutboxDepth: cfg.OutboxDepth}
	if cfg.Transport == transportRedis {
		client := newRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return err
		}
		q := transport.FrontendQueue(client, cfg.Redis.Prefix, cfg.Redis.Session,
			transport.WithPollTimeout(cfg.Redis.PollTimeout),
			transport.WithRedisLimits(cfg.Limits),
			transport.WithOwnedClient(),
		)
		logs.Infof("serving redis addr=%s prefix=%s session=%s", cfg.Redis.Address, cfg.Redis.Prefix, cfg.Redis.Session)
		surface, report := so.surface()
		defer report()
		return frontend.Serve(ctx, q, surface, fopts)
	}

	ln, err := listen(cfg)
	if err != nil {
		return err
	}
	defer ln.Close()
	logs.Infof("serving %s addr=%s", cfg.Transport, ln.Addr())
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			return err
		}
		surface, report := so.surface()
		if err := frontend.Serve(ctx, conn, surface, fopts); err != nil && !errors.Is(err, transport.ErrClosed) {
			report()
			return err
		}
		report()
	}
}
