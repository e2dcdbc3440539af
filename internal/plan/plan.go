package plan

import (
	"regexp"
	"strconv"
	"strings"
)

// PlanStep is one entry of an implementation plan.
type PlanStep struct {
	Index       int // 1-based, contiguous
	Description string
}

// ImplementationPlan is the ordered sequence of steps derived from a
// generated plan document. The step count comes from the Step Extractor;
// descriptions come from the recognizable numbered entries of the document.
type ImplementationPlan struct {
	Path    string
	Content string
	Steps   []PlanStep

	// EntryCount is the number of numbered entries recognized locally,
	// which may diverge from the extractor's count.
	EntryCount int
}

// NewImplementationPlan assembles a plan from its document content and the
// extractor-determined step count. When the local entry count diverges from
// count, steps beyond the recognized entries carry an empty description;
// callers surface the divergence as a warning.
func NewImplementationPlan(path, content string, count int) *ImplementationPlan {
	entries := ParseSteps(content)

	steps := make([]PlanStep, 0, count)
	for i := 1; i <= count; i++ {
		description := ""
		if i <= len(entries) {
			description = entries[i-1].Description
		}
		steps = append(steps, PlanStep{Index: i, Description: description})
	}

	return &ImplementationPlan{
		Path:       path,
		Content:    content,
		Steps:      steps,
		EntryCount: len(entries),
	}
}

// Diverged reports whether the extractor count differs from the number of
// locally recognized entries. Divergence is a warning, never fatal.
func (p *ImplementationPlan) Diverged() bool {
	return len(p.Steps) != p.EntryCount
}

var (
	// stepLineRegex recognizes a numbered plan entry: "1. Foo" or "2) Bar",
	// optionally bolded.
	stepLineRegex = regexp.MustCompile(`^\s{0,3}(?:\*\*)?(\d+)[.)]\s+(.+?)\s*$`)

	// stepsHeadingRegex recognizes a markdown heading introducing the steps
	// section of a plan.
	stepsHeadingRegex = regexp.MustCompile(`(?i)^#{1,6}\s*(?:\d+[.)]\s*)?steps:?\s*$`)

	headingRegex = regexp.MustCompile(`^#{1,6}\s`)
)

// ParseSteps extracts the recognizable numbered entries from a plan
// document. When the document has a "Steps" heading, only that section is
// scanned; otherwise the whole document is. An entry is recognized only if
// its number continues the 1-based sequence, so dates, sub-lists, and
// restarted numbering do not inflate the count.
func ParseSteps(content string) []PlanStep {
	var steps []PlanStep
	next := 1
	for _, line := range strings.Split(stepsSection(content), "\n") {
		m := stepLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n != next {
			continue
		}
		steps = append(steps, PlanStep{Index: n, Description: strings.TrimSpace(m[2])})
		next++
	}
	return steps
}

// stepsSection returns the content between a "Steps" heading and the next
// heading, or the whole content when no such heading exists.
func stepsSection(content string) string {
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if stepsHeadingRegex.MatchString(strings.TrimSpace(line)) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return content
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if headingRegex.MatchString(lines[i]) {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}
