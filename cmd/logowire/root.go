package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/observability"
)

type rootOptions struct {
	configPath string
	cfg        appConfig
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "logowire",
		Short:         "Kernel/frontend console protocol tools",
		Long:          `logowire encodes, decodes and serves the binary console protocol spoken between a Logo kernel and its frontend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logs.ConfigureRuntime()
			observability.RegisterMetrics()
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file")

	root.AddCommand(
		newDemoCmd(opts),
		newServeCmd(opts),
		newSendCmd(opts),
		newDecodeCmd(),
		newCommandsCmd(),
		newConfigCmd(),
	)
	return root
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
