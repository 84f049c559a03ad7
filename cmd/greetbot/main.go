package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "time/tzdata"

	"github.com/greetbot/greetbot/internal/conf"
)

var version = "dev"

func main() {
	// Load .env file
	_ = godotenv.Load()

	v := viper.New()
	rootCmd := &cobra.Command{
		Use:           "greetbot",
		Short:         "Slack bot that reacts to greetings",
		Long:          "greetbot reacts to greeting messages with time-of-day and weather emoji, and asks a language model for reactions to everything else.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("rules", "", "Path to the rules YAML file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	_ = v.BindPFlag(conf.KeyRulesPath, rootCmd.PersistentFlags().Lookup("rules"))
	_ = v.BindPFlag(conf.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd(v), backfillCmd(v), classifyCmd(v))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
