// Package observability provides formatted CLI output and Prometheus metrics.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/feedback360/internal/aggregation"
	"github.com/jonathan/feedback360/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 3
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines on rune boundaries
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary outputs a human-readable overview of an aggregation result.
func (p *Printer) PrintSummary(summary *aggregation.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Questions:       %d\n", summary.QuestionCount))
	sb.WriteString(fmt.Sprintf("Self average:    %.2f\n", summary.AvgSelfRating))
	sb.WriteString(fmt.Sprintf("Reviewer avg:    %.2f\n", summary.AvgReviewerRating))
	sb.WriteString(fmt.Sprintf("Overall gap:     %+.2f (%s)\n", summary.OverallGap, summary.OverallAlignment))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Aligned:         %.0f%%\n", summary.AlignedPercentage))
	sb.WriteString(fmt.Sprintf("Blind spots:     %.0f%%\n", summary.BlindSpotPercentage))
	sb.WriteString(fmt.Sprintf("Hidden strengths: %.0f%%", summary.HiddenStrengthPercentage))
	p.printBox("Assessment Summary", sb.String())

	p.printQuestionList("Top Strengths", summary.TopStrengths)
	p.printQuestionList("Development Areas", summary.DevelopmentAreas)
	p.printQuestionList("Blind Spots", summary.BlindSpots)
	p.printQuestionList("Hidden Strengths", summary.HiddenStrengths)
	p.printSectionExtremes(summary)
}

// printQuestionList renders one curated question list, if non-empty.
func (p *Printer) printQuestionList(title string, questions []types.QuestionResult) {
	if len(questions) == 0 {
		return
	}
	var sb strings.Builder
	count := len(questions)
	if count > maxItemsToShow {
		count = maxItemsToShow
	}
	for i := 0; i < count; i++ {
		q := questions[i]
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Text))
		sb.WriteString(fmt.Sprintf("   self %.1f / reviewers %.1f (gap %+.1f)", q.SelfRating, q.AvgReviewerRating, q.Gap()))
	}
	p.printBox(title, sb.String())
}

func (p *Printer) printSectionExtremes(summary *aggregation.Summary) {
	if summary.HighestSection == nil && summary.LowestSection == nil {
		return
	}
	var sb strings.Builder
	if summary.HighestSection != nil {
		sb.WriteString(fmt.Sprintf("Highest: %s (%.2f)\n", summary.HighestSection.Title, summary.HighestSection.ReviewerAverage))
	}
	if summary.LowestSection != nil {
		sb.WriteString(fmt.Sprintf("Lowest:  %s (%.2f)", summary.LowestSection.Title, summary.LowestSection.ReviewerAverage))
	}
	p.printBox("Section Extremes", strings.TrimRight(sb.String(), "\n"))
}
