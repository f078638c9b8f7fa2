package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/headline"
	"github.com/matheuskafuri/headlines/internal/history"
	"github.com/matheuskafuri/headlines/internal/pipeline"
	"github.com/matheuskafuri/headlines/internal/rank"
	"github.com/matheuskafuri/headlines/internal/source"
)

var fetchedAt = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func sampleDisplay() pipeline.Display {
	return pipeline.Display{
		Records: []headline.Record{
			{Text: "Fed holds rates", Link: "https://www.investing.com/news/1", Views: 4500000, Rating: 4.0, Stars: "★★★★☆", Tag: 310},
			{Text: "Oil slips", Link: "https://www.investing.com/news/2", Views: 1200345, Rating: 2.5, Stars: "★★½☆☆", Tag: 77},
		},
		Label:     "Investing.com",
		Source:    source.Finance,
		Key:       rank.Views,
		FetchedAt: fetchedAt,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeText(&buf, sampleDisplay()); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	want := "Latest Investing.com Headlines - 03.05.2024 09:30 AM\n" +
		"#1 (4,500,000 views, Rating: ★★★★☆ (310)): Fed holds rates\n" +
		"    https://www.investing.com/news/1\n" +
		"#2 (1,200,345 views, Rating: ★★½☆☆ (77)): Oil slips\n" +
		"    https://www.investing.com/news/2\n"
	if got := buf.String(); got != want {
		t.Errorf("writeText:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	d := pipeline.Display{Records: []headline.Record{}, Label: "Health.com", FetchedAt: fetchedAt}
	if err := writeText(&buf, d); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected header only, got %d lines", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, sampleDisplay()); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var got struct {
		Category string            `json:"category"`
		Label    string            `json:"label"`
		Sort     string            `json:"sort"`
		Records  []headline.Record `json:"records"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, buf.String())
	}
	if got.Category != "finance" || got.Label != "Investing.com" || got.Sort != "views" {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if len(got.Records) != 2 || got.Records[1].Views != 1200345 {
		t.Errorf("unexpected records: %+v", got.Records)
	}
	if strings.Contains(buf.String(), `\u0026`) {
		t.Error("expected HTML escaping disabled")
	}
}

func TestWriteSources(t *testing.T) {
	cfg := &config.Config{
		Sources: []config.Source{
			{Name: "sports", Enabled: false},
			{Name: "health", Enabled: true, Cap: 3},
		},
	}
	var buf bytes.Buffer
	if err := writeSources(&buf, cfg); err != nil {
		t.Fatalf("writeSources: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 rows, got %d:\n%s", len(lines), buf.String())
	}

	tests := []struct {
		line int
		want []string
	}{
		{1, []string{"Sports", "ESPN.com", "10", "no"}},
		{2, []string{"Finance", "Investing.com", "yes"}},
		{4, []string{"Health", "Health.com", " 3 ", "yes"}},
	}
	for _, tt := range tests {
		for _, w := range tt.want {
			if !strings.Contains(lines[tt.line], w) {
				t.Errorf("row %d %q missing %q", tt.line, lines[tt.line], w)
			}
		}
	}
}

func TestWriteStats(t *testing.T) {
	st := history.Stats{
		Path:    "/tmp/history.db",
		Entries: 1234,
		Size:    2048,
		Sources: []history.SourceStats{
			{Source: "sports", Fetches: 1200, Failures: 3, AvgItems: 9.5, Last: time.Now().Add(-2 * time.Hour)},
		},
	}
	var buf bytes.Buffer
	if err := writeStats(&buf, st); err != nil {
		t.Fatalf("writeStats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"History: /tmp/history.db", "Fetches: 1,234", "Size: 2.0 kB", "sports", "9.5", "2 hours ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteEntries(t *testing.T) {
	var buf bytes.Buffer
	if err := writeEntries(&buf, nil); err != nil {
		t.Fatalf("writeEntries: %v", err)
	}
	if !strings.Contains(buf.String(), "No fetches recorded.") {
		t.Errorf("expected empty notice, got %q", buf.String())
	}

	buf.Reset()
	entries := []history.Entry{{
		Cycle:    "c1",
		Source:   "health",
		Event:    "select",
		Outcome:  history.OutcomeUnavailable,
		Error:    "page unavailable",
		Duration: 1500 * time.Millisecond,
		At:       time.Now().Add(-time.Minute),
	}}
	if err := writeEntries(&buf, entries); err != nil {
		t.Fatalf("writeEntries: %v", err)
	}
	for _, want := range []string{"health", "select", "unavailable: page unavailable", "1.5s"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("entries output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * 24 * time.Hour, "30d"},
		{24 * time.Hour, "1d"},
		{36 * time.Hour, "36h"},
		{6 * time.Hour, "6h"},
		{90 * time.Minute, "1h30m0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
