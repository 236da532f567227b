package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/index"
	"github.com/starford/things/internal/models"
)

// PrintItems writes one line per item: a page marker, the title, the slug
// and the note when present.
func PrintItems(w io.Writer, items []models.ContentItem) {
	for _, it := range items {
		fmt.Fprintln(w, itemLine(it))
	}
}

// PrintGroups writes items under a bold header per category.
func PrintGroups(w io.Writer, groups []content.Group) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", AccentBold.Render(g.Name), Hint(Count(len(g.Items), "item", "items")))
		for _, it := range g.Items {
			fmt.Fprintln(w, "  "+itemLine(it))
		}
	}
}

func itemLine(it models.ContentItem) string {
	marker := " "
	if it.HasPage {
		marker = SymbolPage
	}
	line := fmt.Sprintf("%s %s %s", marker, it.Title, Accent.Render(it.Slug))
	if it.Note != "" {
		line += "  " + Muted.Render(it.Note)
	}
	return line
}

// PrintThoughts writes thoughts newest first with their owning item.
func PrintThoughts(w io.Writer, thoughts []models.ThoughtEntry) {
	for _, th := range thoughts {
		fmt.Fprintf(w, "%s %s/%s\n  %v\n",
			Muted.Render(formatTimestamp(th.Timestamp)),
			th.Thing.Type, Accent.Render(th.Thing.Slug), th.Content)
	}
}

func formatTimestamp(ts string) string {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ts
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04")
}

// PrintSearch writes search results, one per line.
func PrintSearch(w io.Writer, results []index.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, Hint("no matches"))
		return
	}
	for _, r := range results {
		line := fmt.Sprintf("%s/%s  %s", r.Type, Accent.Render(r.Slug), r.Title)
		if r.Snippet != "" {
			line += "  " + Muted.Render(r.Snippet)
		}
		fmt.Fprintln(w, line)
	}
}

// PrintPending writes the inbox entries of one or more types.
func PrintPending(w io.Writer, pending []inbox.Pending) {
	if len(pending) == 0 {
		fmt.Fprintln(w, Hint("inbox is empty"))
		return
	}
	for _, p := range pending {
		line := fmt.Sprintf("%s %s %s", Accent.Render(p.Filename), Bold.Render(p.Category), p.Title)
		if p.Note != "" {
			line += "  " + Muted.Render(p.Note)
		}
		fmt.Fprintln(w, line)
	}
}

// PrintPromoted writes one status line per promoted entry and reports how
// many failed.
func PrintPromoted(w io.Writer, results []inbox.PromoteResult) (failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintln(w, Error(fmt.Sprintf("%s: %v", r.Title, r.Err)))
			continue
		}
		fmt.Fprintln(w, Success(fmt.Sprintf("%s -> %s", r.Title, Accent.Render(r.Path))))
	}
	return failed
}
