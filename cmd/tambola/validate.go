package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"svw.info/tambola/internal/codec"
	"svw.info/tambola/internal/render"
	"svw.info/tambola/internal/validator"
)

var errInvalidTicket = errors.New("ticket breaks the rules")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check a ticket JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			t, err := codec.DecodeTicket(data)
			if err != nil {
				return err
			}
			ok, conf, err := validator.New().Validate(cmd.Context(), &t.Grid)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprint(out, render.Violations(conf))
				return fmt.Errorf("%w: %d violation(s)", errInvalidTicket, len(conf))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
