package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"svw.info/tambola/internal/config"
	"svw.info/tambola/internal/generator"
	"svw.info/tambola/internal/render"
	"svw.info/tambola/internal/usecase"
	"svw.info/tambola/internal/validator"
)

func newGenerateCmd() *cobra.Command {
	var (
		count    int
		seed     int64
		strategy string
		asJSON   bool
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print new tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			lvl := slog.LevelWarn
			if verbose {
				lvl = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
			uc := usecase.NewService(generator.New(s), validator.New(), nil, generator.NewSource, logger)
			tickets, _, err := uc.GenerateBatch(cmd.Context(), usecase.IssueRequest{Seed: seed}, count)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tickets)
			}
			for _, t := range tickets {
				fmt.Fprintln(out, render.Ticket(t))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of tickets (1..100)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "batch seed, 0 for the clock")
	cmd.Flags().StringVar(&strategy, "strategy", "joint", "generator: joint|repair")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each issued ticket")
	return cmd
}
