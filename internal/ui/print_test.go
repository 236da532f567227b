package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/models"
)

func TestCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "(0 items)"},
		{1, "(1 item)"},
		{12, "(12 items)"},
	}
	for _, tt := range tests {
		if got := Count(tt.n, "item", "items"); got != tt.want {
			t.Errorf("Count(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPrintGroups(t *testing.T) {
	var buf bytes.Buffer
	PrintGroups(&buf, []content.Group{
		{Name: "comedy", Items: []models.ContentItem{{Title: "Veep", Slug: "veep"}}},
		{Name: "drama", Items: []models.ContentItem{{Title: "The Wire", Slug: "the-wire", Note: "best show ever", HasPage: true}}},
	})
	out := buf.String()
	for _, want := range []string{"comedy", "(1 item)", "Veep", "the-wire", "best show ever", SymbolPage} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "comedy") > strings.Index(out, "drama") {
		t.Error("groups printed out of order")
	}
}

func TestPrintThoughts(t *testing.T) {
	var buf bytes.Buffer
	PrintThoughts(&buf, []models.ThoughtEntry{{
		Timestamp: "0",
		Content:   "diner scene",
		Thing:     models.ThingSnapshot{Slug: "heat", Type: "movies"},
	}})
	out := buf.String()
	if !strings.Contains(out, "1970-01-01 00:00") || !strings.Contains(out, "diner scene") {
		t.Errorf("output = %q", out)
	}
}

func TestPrintPromoted(t *testing.T) {
	var buf bytes.Buffer
	failed := PrintPromoted(&buf, []inbox.PromoteResult{
		{Title: "Heat", Path: "movies/heat.mdx"},
		{Title: "Tenet", Err: errors.New("boom")},
	})
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	out := buf.String()
	if !strings.Contains(out, SymbolSuccess+" Heat") || !strings.Contains(out, SymbolError+" Tenet: boom") {
		t.Errorf("output = %q", out)
	}
}

func TestPrintPending_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintPending(&buf, nil)
	if !strings.Contains(buf.String(), "inbox is empty") {
		t.Errorf("output = %q", buf.String())
	}
}
