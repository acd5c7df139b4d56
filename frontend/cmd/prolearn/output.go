package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
)

var stdout io.Writer = os.Stdout

func writeJSON(payload any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(stdout, format, args...)
	return err
}

func writePostList(page *api.PostPage) error {
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tOWNER\tLIKES\tMEDIA")
	for _, p := range page.Content {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", p.Id, p.Category.Label(), p.Title, p.Owner, p.LikesCount, len(p.Media))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writePlain("page %d of %d\n", page.Number+1, max(page.TotalPages, 1))
}

func writePostDetail(p *domain.Post, mediaURL func(string) string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s\n", p.Id, p.Title)
	fmt.Fprintf(&b, "category: %s\n", p.Category.Label())
	fmt.Fprintf(&b, "owner:    %s\n", p.Owner)
	fmt.Fprintf(&b, "likes:    %d  comments: %d\n", p.LikesCount, p.CommentsCount)
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Description)
	}
	if len(p.Media) > 0 {
		b.WriteString("\nmedia:\n")
		for _, m := range p.Media {
			fmt.Fprintf(&b, "  %d  %-5s  %s\n", m.Id, m.Kind, mediaURL(m.URL))
		}
	}
	return writePlain("%s", b.String())
}
