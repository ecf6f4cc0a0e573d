package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/logowire/internal/frontend"
	"github.com/danmuck/logowire/internal/kernel"
	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/protocol"
	"github.com/danmuck/logowire/internal/transport"
)

func newDemoCmd(opts *rootOptions) *cobra.Command {
	var (
		interactive bool
		headless    bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a kernel script against an in-process frontend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			so := surfaceOptions{
				headless: headless,
				out:      cmd.OutOrStdout(),
				settings: opts.cfg.Console,
			}
			if interactive {
				so.in = os.Stdin
			}
			return runDemo(ctx, opts.cfg, so, interactive)
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for input from the terminal")
	cmd.Flags().BoolVar(&headless, "headless", false, "render into memory and print the final text")
	return cmd
}

func runDemo(ctx context.Context, cfg appConfig, so surfaceOptions, interactive bool) error {
	kernelSide, frontSide := transport.Pipe(cfg.Limits)
	surface, report := so.surface()
	served := make(chan error, 1)
	go func() {
		served <- frontend.Serve(ctx, frontSide, surface, frontend.Options{OutboxDepth: cfg.OutboxDepth})
	}()

	client, err := kernel.NewClient(kernelSide)
	if err != nil {
		_ = kernelSide.Close()
		<-served
		return err
	}
	client.Start(ctx)
	scriptErr := demoScript(ctx, client, interactive)
	closeErr := client.Close()
	serveErr := <-served
	report()
	return errors.Join(scriptErr, closeErr, serveErr)
}

func demoScript(ctx context.Context, c *kernel.Client, interactive bool) error {
	steps := []func() error{
		func() error { return c.ClearText(ctx) },
		func() error { return c.SetFont(ctx, "Courier") },
		func() error { return c.SetTextSize(ctx, 12.5) },
		func() error { return c.SetTextColor(ctx, protocol.RGB(0x7f, 0xff, 0x00), protocol.Color{}) },
		func() error { return c.PrintString(ctx, "logowire demo\n") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	// walk the turtle round a square
	corners := [][3]float64{{0, 100, 0}, {100, 100, 90}, {100, 0, 180}, {0, 0, 270}}
	for _, p := range corners {
		if err := c.SetTurtlePos(ctx, p[0], p[1], p[2]); err != nil {
			return err
		}
		if err := c.PrintString(ctx, fmt.Sprintf("forward 100 -> %.0f %.0f\n", p[0], p[1])); err != nil {
			return err
		}
	}

	row, col, err := c.CursorPos(ctx)
	if err != nil {
		return err
	}
	logs.Debugf("demo cursor row=%d col=%d", row, col)
	if err := c.PrintString(ctx, fmt.Sprintf("cursor at %d,%d\n", row, col)); err != nil {
		return err
	}

	if !interactive {
		return nil
	}
	name, err := c.ReadLine(ctx, "What is your name? ")
	if err != nil {
		return err
	}
	if err := c.PrintString(ctx, "Hello, "+name+"! Press any key.\n"); err != nil {
		return err
	}
	if _, err := c.ReadCharacter(ctx); err != nil {
		return err
	}
	return c.PrintString(ctx, "bye\n")
}
