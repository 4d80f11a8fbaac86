package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/chatfusion/internal/chat"
	srv "github.com/mohammad-safakhou/chatfusion/internal/server"
	"github.com/mohammad-safakhou/chatfusion/repository/redis_repository"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func askCMD(cfgPath *string) *cobra.Command {
	var model string
	var format bool

	var ask = &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer a single query from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			// the scrape cache is optional here; skip Redis unless it is in use
			var rdb *redis.Client
			if cfg.Scraper.CacheTTL > 0 {
				if rdb, err = redis_repository.Conn(ctx, cfg.Storage.Redis); err != nil {
					return err
				}
				defer rdb.Close()
			}

			svc, err := srv.NewChatService(cfg, rdb, log, nil)
			if err != nil {
				return err
			}
			req := chat.Request{Query: strings.Join(args, " "), Model: model}
			if cmd.Flags().Changed("format") {
				req.Format = &format
			}
			ans, err := svc.Answer(ctx, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
			return err
		},
	}
	ask.Flags().StringVarP(&model, "model", "m", "", "completion model (default llm.default_model)")
	ask.Flags().BoolVar(&format, "format", false, "run the Markdown formatting pass")
	return ask
}
