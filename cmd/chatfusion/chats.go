package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mohammad-safakhou/chatfusion/internal/store"
	"github.com/spf13/cobra"
)

func chatsCMD(cfgPath *string) *cobra.Command {
	var chats = &cobra.Command{
		Use:   "chats",
		Short: "List stored chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if err := cfg.Storage.Postgres.Validate(); err != nil {
				return err
			}

			st, err := store.New(cmd.Context(), cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.ListChats(cmd.Context())
			if err != nil {
				return err
			}
			renderChats(cmd.OutOrStdout(), list)
			return nil
		},
	}
	return chats
}

// renderChats prints one row per chat with its first user message.
func renderChats(w io.Writer, chats []store.ChatHistory) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Messages", "Updated", "First question"})
	for _, c := range chats {
		first := ""
		for _, m := range c.Messages {
			if m.Role == store.RoleUser {
				first = preview(m.Content, 60)
				break
			}
		}
		t.AppendRow(table.Row{c.ID, c.Title, len(c.Messages), c.UpdatedAt.Format("2006-01-02 15:04"), first})
	}
	t.AppendFooter(table.Row{"", "Total", len(chats), "", ""})
	t.Render()
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
