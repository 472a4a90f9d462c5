package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/threadline/pkg/social"
)

var (
	accent   = lipgloss.Color("#FFB3BA")
	mutedFg  = lipgloss.Color("245")
	warnFg   = lipgloss.Color("203")
	boxWidth = 64

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	noteStyle   = lipgloss.NewStyle().Foreground(mutedFg)
	postStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(boxWidth)
)

// renderThread shows each fragment in a box with its position and length.
func renderThread(fragments []string, limit int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d post(s), limit %d", len(fragments), limit)))
	b.WriteString("\n")

	for i, f := range fragments {
		n := utf8.RuneCountInString(f)
		counter := noteStyle.Render(fmt.Sprintf("%d/%d · %d chars", i+1, len(fragments), n))
		if n > limit {
			counter = lipgloss.NewStyle().Foreground(warnFg).Render(fmt.Sprintf("%d/%d · %d chars (over limit)", i+1, len(fragments), n))
		}
		b.WriteString(counter)
		b.WriteString("\n")
		b.WriteString(postStyle.Render(f))
		b.WriteString("\n")
	}
	return b.String()
}

// renderPost shows a post fetched from a timeline.
func renderPost(post *social.Post) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("@" + post.Account))
	b.WriteString(" ")
	b.WriteString(noteStyle.Render(post.URL))
	b.WriteString("\n")
	b.WriteString(postStyle.Render(post.Text))
	b.WriteString("\n")
	return b.String()
}
