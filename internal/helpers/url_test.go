package helpers

import "testing"

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "defaults https and cleans path",
			in:   "Example.com/news/../tech/latest",
			want: "https://example.com/tech/latest",
		},
		{
			name: "removes default port and tracking params",
			in:   "http://news.example.com:80/article?id=123&utm_source=rss#section",
			want: "http://news.example.com/article?id=123",
		},
		{
			name: "sorts query parameters and preserves trailing slash",
			in:   "https://example.com/path/?b=2&a=1&fbclid=xyz",
			want: "https://example.com/path/?a=1&b=2",
		},
		{
			name: "handles schemeless url with double slash",
			in:   "//blog.example.com/post/42?utm_medium=email",
			want: "https://blog.example.com/post/42",
		},
		{
			name: "normalises repeated slashes",
			in:   "https://example.com//a//b///c",
			want: "https://example.com/a/b/c",
		},
		{
			name: "keeps non-default port and drops credentials",
			in:   "https://user:pw@Example.com:8443/x",
			want: "https://example.com:8443/x",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalURL() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	t.Parallel()
	if _, err := CanonicalURL(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := CanonicalURL(":///invalid"); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestURLFingerprintSharedByEquivalentURLs(t *testing.T) {
	t.Parallel()
	base := "https://docs.example.com/guide/intro?page=2"
	want, err := URLFingerprint(base)
	if err != nil {
		t.Fatalf("URLFingerprint: %v", err)
	}
	if len(want) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", want)
	}
	same := []string{
		"HTTPS://Docs.Example.COM/guide/intro?page=2",
		"https://docs.example.com/guide/intro?page=2&utm_source=chat&utm_medium=link",
		"https://docs.example.com:443/guide/./intro?page=2#setup",
		"https://docs.example.com/guide//intro?fbclid=abc&page=2",
	}
	for _, in := range same {
		got, err := URLFingerprint(in)
		if err != nil {
			t.Fatalf("URLFingerprint(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("expected %q to share the fingerprint of %q", in, base)
		}
	}
}

func TestURLFingerprintDistinguishesPages(t *testing.T) {
	t.Parallel()
	base, _ := URLFingerprint("https://docs.example.com/guide/intro?page=2")
	different := []string{
		"http://docs.example.com/guide/intro?page=2",
		"https://docs.example.com/guide/Intro?page=2",
		"https://docs.example.com/guide/intro?page=3",
		"https://docs.example.com:8443/guide/intro?page=2",
	}
	for _, in := range different {
		got, err := URLFingerprint(in)
		if err != nil {
			t.Fatalf("URLFingerprint(%q): %v", in, err)
		}
		if got == base {
			t.Fatalf("expected %q to get its own fingerprint", in)
		}
	}
	if _, err := URLFingerprint("   "); err == nil {
		t.Fatalf("expected error for blank url")
	}
}
