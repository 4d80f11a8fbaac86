package helpers

import "testing"

func TestCleanText(t *testing.T) {
	if got := CleanText("  Hello\n\t  world  \n"); got != "Hello world" {
		t.Fatalf("CleanText() = %q", got)
	}
	if got := NormalizeForDiff("  MiXed   Case "); got != "mixed case" {
		t.Fatalf("NormalizeForDiff() = %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("héllo wörld", 5); got != "héllo" {
		t.Fatalf("TruncateRunes() = %q", got)
	}
	if got := TruncateRunes("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := TruncateRunes("abc", 0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
