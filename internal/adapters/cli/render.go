package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/okian/psychometrician/internal/adapters/repository"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/model"
)

const ruleWidth = 60

// Renderer writes questionnaire views as plain or colored text.
type Renderer struct {
	w            io.Writer
	colorEnabled bool
}

// NewRenderer creates a renderer on w.
func NewRenderer(w io.Writer, colorEnabled bool) *Renderer {
	return &Renderer{w: w, colorEnabled: colorEnabled}
}

// colorize applies attrs to text if color is enabled.
func (r *Renderer) colorize(text string, attrs ...color.Attribute) string {
	if !r.colorEnabled {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// bandColor is green for low, blue for moderate and red for high.
func bandColor(b model.Band) color.Attribute {
	switch b {
	case model.BandLow:
		return color.FgGreen
	case model.BandModerate:
		return color.FgBlue
	case model.BandHigh:
		return color.FgRed
	default:
		return color.FgWhite
	}
}

func (r *Renderer) rule() {
	fmt.Fprintln(r.w, r.colorize(strings.Repeat("=", ruleWidth), color.FgCyan))
}

// Question writes the header of an issued item.
func (r *Renderer) Question(sel adaptive.Selection, p service.Progress) {
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%s  %s\n",
		r.colorize(fmt.Sprintf("Question %d of %d", p.QuestionNumber, p.Quota), color.FgYellow, color.Bold),
		r.colorize(model.DisplayName(sel.Domain), color.FgCyan),
	)
	fmt.Fprintf(r.w, "Progress: %3.0f%%\n", p.Fraction*100)
}

// Result writes the final report and the response history.
func (r *Renderer) Result(res service.Result) {
	fmt.Fprintln(r.w)
	r.rule()
	fmt.Fprintln(r.w, r.colorize("Assessment results", color.FgYellow, color.Bold))
	r.rule()
	fmt.Fprintf(r.w, "Overall score: %.2f\n\n", res.Report.Overall)

	if len(res.Report.Domains) == 0 {
		fmt.Fprintln(r.w, "No domain was assessed.")
	}
	for _, d := range res.Report.SortedDomains() {
		band := res.Report.Interpretations[d]
		fmt.Fprintf(r.w, "  %-20s %.2f  %s\n",
			model.DisplayName(d),
			res.Report.Domains[d],
			r.colorize(string(band), bandColor(band), color.Bold),
		)
	}

	if len(res.History) == 0 {
		return
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, r.colorize("Your responses", color.FgCyan))
	for _, h := range res.History {
		fmt.Fprintf(r.w, "  %2d. %s\n      %s: %s\n", h.Sequence, h.Question, h.DomainName, h.ResponseLabel)
	}
}

// Summary writes the item bank counts per domain.
func (r *Renderer) Summary(s repository.Summary) {
	fmt.Fprintln(r.w, r.colorize(fmt.Sprintf("Item bank: %d items", s.Total), color.Bold))
	for _, d := range s.SortedDomains() {
		fmt.Fprintf(r.w, "  %-20s %d\n", model.DisplayName(d), s.Domains[d])
	}
}

// Item writes one bank item on a line.
func (r *Renderer) Item(item model.Item) {
	fmt.Fprintf(r.w, "%4d  %-18s %.1f  %s\n", item.ID, model.DisplayName(item.Domain), item.Difficulty, item.Text)
}
