package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/logowire/internal/protocol"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>...",
		Short: "Decode one hex-encoded message and print its typed payload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			return describe(cmd.OutOrStdout(), raw)
		},
	}
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the command registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, spec := range protocol.Specs() {
				fields := make([]string, len(spec.Fields))
				for i, f := range spec.Fields {
					fields[i] = f.Name + ":" + f.Kind.String()
				}
				if _, err := fmt.Fprintf(out, "%3d  %-28s %-11s %s\n", uint8(spec.Command), spec.Name, spec.Direction, strings.Join(fields, " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// parseHex ignores spaces, colons and a leading 0x.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return b, nil
}

func describe(w io.Writer, raw []byte) error {
	p, err := protocol.Decode(raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s %+v\n", p.Command(), p)
	return err
}
