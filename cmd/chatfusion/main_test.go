package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/chatfusion/internal/store"
)

func TestRootRegistersCommands(t *testing.T) {
	root := rootCMD()
	for _, name := range []string{"serve", "migrate", "ask", "chats"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s command, got %v (%v)", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("expected persistent --config flag")
	}
}

func TestRenderChats(t *testing.T) {
	var buf bytes.Buffer
	renderChats(&buf, []store.ChatHistory{{
		ID:        "7f6c3a52-61b0-4c1e-9d7e-2f0b8c1a9e11",
		Title:     "Go questions",
		UpdatedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Messages: []store.Message{
			{Role: store.RoleUser, Content: "What   is\nGo?"},
			{Role: store.RoleAI, Content: "A language."},
		},
	}})
	out := buf.String()
	for _, want := range []string{"Go questions", "What is Go?", "2024-05-01 12:30", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 10); got != "short" {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := preview("abcdefghij", 4); got != "abcd…" {
		t.Fatalf("unexpected preview %q", got)
	}
}
