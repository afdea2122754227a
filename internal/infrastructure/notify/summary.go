// Package notify delivers run reports to chat channels.
package notify

import (
	"fmt"
	"strings"

	"IdeaScout/internal/domain"
)

const (
	failedHeader  = "❌ Automation Idea Pipeline Failed"
	summaryHeader = "🤖 Automation Idea Pipeline Summary"
	topReasons    = 5
)

func durationMinutes(r domain.RunReport) string {
	return fmt.Sprintf("%.1f", r.Stats.Duration.Minutes())
}

func reportDate(r domain.RunReport) string {
	return r.FinishedAt.Format("02/01/2006")
}

// markdownEscaper guards the characters Telegram's legacy Markdown treats as entities.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func plain(s string) string { return s }

func publishedList(titles []string, esc func(string) string) string {
	lines := make([]string, len(titles))
	for i, t := range titles {
		lines[i] = fmt.Sprintf("%d. %s", i+1, esc(t))
	}
	return strings.Join(lines, "\n")
}

func reasonList(r domain.RunReport, esc func(string) string) string {
	top := r.Stats.TopReasons(topReasons)
	lines := make([]string, 0, len(top)+1)
	for _, rc := range top {
		lines = append(lines, fmt.Sprintf("• %s (%d)", esc(rc.Reason), rc.Count))
	}
	if extra := len(r.Stats.RejectionReasons) - len(top); extra > 0 {
		lines = append(lines, fmt.Sprintf("_...and %d more_", extra))
	}
	return strings.Join(lines, "\n")
}

// Summary renders the report as plain markdown text.
func Summary(r domain.RunReport) string {
	return summary(r, plain)
}

// EscapedSummary renders the report with every interpolated string escaped for Telegram Markdown.
func EscapedSummary(r domain.RunReport) string {
	return summary(r, markdownEscaper.Replace)
}

func summary(r domain.RunReport, esc func(string) string) string {
	if r.Failed() {
		return fmt.Sprintf("%s\n*Error:* %s", failedHeader, esc(r.Error))
	}

	var b strings.Builder
	b.WriteString(summaryHeader + "\n")
	fmt.Fprintf(&b, "*Published:* %d new ideas\n", r.Stats.IdeasPublished)
	fmt.Fprintf(&b, "*Rejected:* %d ideas\n", r.Stats.IdeasRejected)
	fmt.Fprintf(&b, "*Duration:* %s min\n", durationMinutes(r))
	fmt.Fprintf(&b, "*Date:* %s", reportDate(r))
	if len(r.PublishedTitles) > 0 {
		b.WriteString("\n\n*✅ Published Ideas:*\n" + publishedList(r.PublishedTitles, esc))
	}
	if len(r.Stats.RejectionReasons) > 0 {
		b.WriteString("\n\n*❌ Top Rejection Reasons:*\n" + reasonList(r, esc))
	}
	return b.String()
}
