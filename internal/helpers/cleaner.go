package helpers

import (
	"strings"
)

// UnwrapMarkdownFence strips a single fence surrounding the whole of s when
// the fence is untagged or tagged markdown/md. Anything else is returned
// trimmed but otherwise unchanged.
func UnwrapMarkdownFence(s string) string {
	s = trimBOM(strings.TrimSpace(s))
	for _, fence := range []string{"```", "~~~"} {
		if !strings.HasPrefix(s, fence) || !strings.HasSuffix(s, fence) || len(s) < 2*len(fence) {
			continue
		}
		nl := strings.IndexByte(s, '\n')
		if nl == -1 {
			continue
		}
		info := strings.ToLower(strings.TrimSpace(s[len(fence):nl]))
		if info != "" && info != "markdown" && info != "md" {
			continue
		}
		inner := s[nl+1 : len(s)-len(fence)]
		// a nested fence means the outer markers belong to separate blocks
		if strings.Contains(inner, fence) {
			continue
		}
		return strings.TrimSpace(inner)
	}
	return s
}

// DedupLines removes repeated lines from model output, keeping the first
// occurrence. Lines are compared after NormalizeForDiff. Lines inside fenced
// code blocks, blank lines and lines without any letter or digit (rules,
// table separators) are always kept; runs of blank lines collapse to one.
func DedupLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	inFence := false
	lastBlank := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			out = append(out, line)
			lastBlank = false
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if trimmed == "" {
			if !lastBlank && len(out) > 0 {
				out = append(out, "")
			}
			lastBlank = true
			continue
		}
		if hasWordChars(trimmed) {
			key := NormalizeForDiff(trimmed)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, line)
		lastBlank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
