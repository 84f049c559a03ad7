package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"github.com/greetbot/greetbot/internal/conf"
	"github.com/greetbot/greetbot/internal/logger"
	"github.com/greetbot/greetbot/internal/server"
	"github.com/greetbot/greetbot/internal/service"
)

const shutdownTimeout = 10 * time.Second

// loadConfig reads configuration and builds the logger. serve additionally
// requires the socket mode token and a listener port.
func loadConfig(v *viper.Viper, serve bool) (*conf.Config, *zap.SugaredLogger, error) {
	cfg, err := conf.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if serve {
		err = cfg.ValidateServe()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.RulesPath != "" {
		log.Infow("rules loaded", "path", cfg.RulesPath)
	} else {
		log.Info("no rules file found, using built-in rules")
	}
	return cfg, log, nil
}

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot over Socket Mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v, true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a := newApp(cfg, log)

			// A bad bot token is fatal at startup
			botUserID, err := a.repos.Message.BotUserID(ctx)
			if err != nil {
				return fmt.Errorf("auth.test: %w", err)
			}
			log.Infow("starting greetbot",
				"version", version,
				"bot_user_id", botUserID,
				"port", cfg.Server.Port,
				"weather", describeWeather(cfg),
				"backfill", cfg.Backfill.Enabled,
				"mention", cfg.Features.Mention,
				"home_tab", cfg.Features.HomeTab,
			)

			var mentions server.MentionHandler
			if a.mentions != nil {
				mentions = a.mentions
			}
			var home server.HomeHandler
			if a.home != nil {
				home = a.home
			}
			slackSrv := server.NewSlackServer(a.slack, a.repos.Message, a.reactions, mentions, home, log.Named("slack"))
			httpSrv := server.NewHTTPServer(cfg.Server.Port, a.registry, slackSrv.Connected, log.Named("http"))

			var scheduler *service.BackfillScheduler
			if cfg.Backfill.Enabled {
				scheduler, err = service.NewBackfillScheduler(a.backfill, cfg.Backfill.Cron, cfg.Backfill.Jitter, backfillLocation(cfg), log.Named("scheduler"))
				if err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return slackSrv.Run(gctx)
			})
			g.Go(func() error {
				return httpSrv.Start()
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				if scheduler != nil {
					scheduler.Stop()
				}
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer shutdownCancel()
				return httpSrv.Shutdown(shutdownCtx)
			})

			if scheduler != nil {
				if err := scheduler.Start(gctx); err != nil {
					cancel()
					_ = g.Wait()
					return err
				}
			}

			err = g.Wait()
			log.Info("greetbot stopped")
			return err
		},
	}

	cmd.Flags().Int("port", 0, "HTTP listener port for /health and /metrics")
	_ = v.BindPFlag(conf.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

func backfillLocation(cfg *conf.Config) *time.Location {
	if loc, err := time.LoadLocation(cfg.Weather.Timezone); err == nil && cfg.Weather.Timezone != "" {
		return loc
	}
	return time.Local
}
