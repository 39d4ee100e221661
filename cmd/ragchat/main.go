package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var debug bool
	var root = &cobra.Command{
		Use:          "ragchat",
		Short:        "Chat with an LLM, optionally grounded on your documents",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file (default ./config.yaml, then ~/.config/ragchat/config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "write logs to ragchat-debug.log")

	root.AddCommand(
		chatCMD(&cfgPath, &debug),
		ragCMD(&cfgPath, &debug),
		ingestCMD(&cfgPath),
		configCMD(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
