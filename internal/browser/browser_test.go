package browser

import (
	"errors"
	"slices"
	"testing"
)

func stubStart(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	orig := start
	start = func(name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}
	t.Cleanup(func() { start = orig })
	return &calls
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	calls := stubStart(t)

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://www.espn.com/nba/story/1", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"/news/relative", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Open(tt.url)
		if tt.wantErr {
			if !errors.Is(err, ErrRejectedURL) {
				t.Errorf("Open(%q): expected ErrRejectedURL, got %v", tt.url, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Open(%q): unexpected error: %v", tt.url, err)
		}
	}
	if len(*calls) != 2 {
		t.Errorf("expected 2 launches, got %d", len(*calls))
	}
}

func TestOpenPassesURLLast(t *testing.T) {
	calls := stubStart(t)
	if err := Open("https://www.bbc.com/news/a"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := (*calls)[0]
	if got[len(got)-1] != "https://www.bbc.com/news/a" {
		t.Errorf("expected url as last argument, got %v", got)
	}
}

func TestOpener(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "open", nil},
		{"linux", "xdg-open", nil},
		{"freebsd", "xdg-open", nil},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler"}},
	}
	for _, tt := range tests {
		name, args := opener(tt.goos)
		if name != tt.name || !slices.Equal(args, tt.args) {
			t.Errorf("opener(%q) = %q %v, want %q %v", tt.goos, name, args, tt.name, tt.args)
		}
	}
}
