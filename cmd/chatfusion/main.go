package main

import (
	"fmt"
	"os"

	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var cfgPath string
	var root = &cobra.Command{
		Use:           "chatfusion",
		Short:         "Chat completions enriched with scraped web content",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: ./config/config.json)")

	root.AddCommand(serveCMD(&cfgPath), migrateCMD(&cfgPath), askCMD(&cfgPath), chatsCMD(&cfgPath))
	return root
}

// setup loads configuration and builds the logger for a command.
func setup(cfgPath string) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.General.LogLevel, cfg.General.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
