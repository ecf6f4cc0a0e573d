package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/logowire/internal/kernel"
	"github.com/danmuck/logowire/internal/protocol"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <command> [args...]",
		Short: "Send one command to a serving frontend",
		Long: `Send encodes one command and sends it as the kernel would. Request commands
wait for the frontend's reply and print it. Run "logowire commands" for names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := resolveCommand(args[0])
			if err != nil {
				return err
			}
			if spec.Direction != protocol.ToFrontend {
				return fmt.Errorf("%s is sent by the frontend, not the kernel", spec.Name)
			}
			payload, err := parsePayload(spec, args[1:])
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
			defer cancelTimeout()

			conn, err := dialKernel(ctx, opts.cfg)
			if err != nil {
				return err
			}
			client, err := kernel.NewClient(conn)
			if err != nil {
				_ = conn.Close()
				return err
			}
			defer client.Close()
			client.Start(ctx)

			out := cmd.OutOrStdout()
			switch p := payload.(type) {
			case protocol.RequestCharacter:
				ch, err := client.ReadCharacter(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%q\n", ch)
				return err
			case protocol.RequestLine:
				line, err := client.ReadLine(ctx, p.Prompt)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%q\n", line)
				return err
			case protocol.RequestCursorPos:
				row, col, err := client.CursorPos(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%d %d\n", row, col)
				return err
			default:
				return client.Send(ctx, payload)
			}
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}
