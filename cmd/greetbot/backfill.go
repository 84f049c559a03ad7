package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greetbot/greetbot/internal/conf"
)

func backfillCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Scan recent channel history once and react to missed greetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v, false)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a := newApp(cfg, log)
			report, err := a.backfill.Scan(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channels=%d failed=%d scanned=%d processed=%d skipped=%d\n",
				report.Channels, len(report.FailedChannels), report.Scanned, report.Processed, report.Skipped)
			return nil
		},
	}

	cmd.Flags().Duration("window", 0, "How far back to scan (default 24h)")
	_ = v.BindPFlag(conf.KeyBackfillWindow, cmd.Flags().Lookup("window"))
	return cmd
}
