package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greetbot/greetbot/internal/biz/domain"
	"github.com/greetbot/greetbot/internal/conf"
	"github.com/greetbot/greetbot/internal/logger"
)

func classifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Classify text and print the reactions it would get, without touching Slack",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conf.Load(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Rules.Validate(); err != nil {
				return fmt.Errorf("invalid rules: %w", err)
			}

			log := logger.Nop()
			a := newApp(cfg, log)

			text := strings.Join(args, " ")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cls := a.usecases.Classifier.ClassifyText(text)
			set := a.usecases.Resolver.Resolve(ctx, &domain.Message{Text: text}, cls)

			var weather *domain.WeatherResolution
			if set.Contains(domain.TokenSunny) {
				res := a.usecases.Weather.Resolve(ctx)
				weather = &res
			}
			printClassification(cmd.OutOrStdout(), cls, set, weather)
			return nil
		},
	}
}

func printClassification(w io.Writer, cls domain.Classification, set domain.ReactionSet, weather *domain.WeatherResolution) {
	fmt.Fprintf(w, "verdict:  %s\n", cls.Verdict)
	fmt.Fprintf(w, "segment:  %s\n", cls.Segment)
	fmt.Fprintf(w, "score:    %.3f\n", cls.Score)
	if cls.Keyword != "" {
		fmt.Fprintf(w, "keyword:  %s\n", cls.Keyword)
	}
	fmt.Fprintf(w, "reactions: %s\n", strings.Join(set, ", "))
	if weather != nil {
		line := weather.Token
		if !weather.OK() {
			line += " (fallback: " + string(weather.Failure) + ")"
		}
		fmt.Fprintf(w, "weather:  %s\n", line)
	}
}
