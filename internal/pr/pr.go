// Package pr assembles and submits pull requests at the end of a pipeline
// run. It discovers repository PR templates, generates a title and body
// through the reasoning delegate, and files the result with the GitHub CLI or
// the REST API.
package pr

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"
	"unicode"

	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// Content holds a generated PR title and body.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Context carries everything known about the branch being raised.
type Context struct {
	Branch       string
	Base         string
	CommitLog    string
	ChangedFiles []string
	Template     *Candidate
}

// promptTemplate is rendered with promptData and sent to the delegate.
const promptTemplate = `You are helping create a pull request. Based on the following information, generate a concise and meaningful PR title and description.

## Branch Name
{{.Branch}}

## Target Branch
{{.Base}}

## Changed Files
{{range .ChangedFiles}}- {{.}}
{{end}}

## Commit History
{{.CommitLog}}

---

Generate a PR with:
1. A concise title following conventional commit format (e.g., "feat: add user authentication", "fix: resolve memory leak")
2. A body that includes:
   - A brief summary (2-3 sentences max)
   - Key changes as bullet points
   - Any important notes for reviewers

Do not mention commits that only add or remove the implementation plan file.
{{if .TemplateContent}}
Structure the body according to this PR template, filling in the relevant sections. If the template contains checkboxes, tick only the ones that apply:

{{.TemplateContent}}
{{end}}
Respond ONLY with valid JSON in this exact format:
{"title": "your title here", "body": "your body here\n\nwith proper newlines"}

Important:
- Keep the title under 72 characters
- Use lowercase for the conventional commit prefix
- Be concise but informative
- Do not include any text outside the JSON object`

type promptData struct {
	Branch          string
	Base            string
	ChangedFiles    []string
	CommitLog       string
	TemplateContent string
}

// Generator creates PR content through the reasoning delegate.
type Generator struct {
	oracle delegate.Oracle
	logger *logging.Logger
}

// NewGenerator creates a Generator backed by the given delegate.
func NewGenerator(oracle delegate.Oracle, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Generator{oracle: oracle, logger: logger}
}

// Generate asks the delegate for a title and body. The reply must carry a
// JSON object; markdown fences around it are tolerated.
func (g *Generator) Generate(ctx context.Context, prCtx Context) (*Content, error) {
	prompt, err := buildContentPrompt(prCtx)
	if err != nil {
		return nil, err
	}

	reply, err := g.oracle.Generate(ctx, prompt)
	if err != nil {
		return nil, errors.Wrap(err, "PR content generation failed")
	}

	payload, err := delegate.ExtractJSON(reply)
	if err != nil {
		return nil, errors.Wrap(err, "PR content reply carried no JSON")
	}

	var content Content
	if err := json.Unmarshal(payload, &content); err != nil {
		return nil, errors.Wrapf(err, "failed to parse PR content reply %q", string(payload))
	}
	if strings.TrimSpace(content.Title) == "" {
		g.logger.Warn("delegate returned empty PR title, deriving one from the branch name", "branch", prCtx.Branch)
		content.Title = TitleFromBranch(prCtx.Branch)
	}
	return &content, nil
}

func buildContentPrompt(prCtx Context) (string, error) {
	tmpl, err := template.New("pr-prompt").Parse(promptTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse PR prompt template")
	}

	data := promptData{
		Branch:       prCtx.Branch,
		Base:         prCtx.Base,
		ChangedFiles: prCtx.ChangedFiles,
		CommitLog:    prCtx.CommitLog,
	}
	if prCtx.Template != nil {
		data.TemplateContent = prCtx.Template.Content
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to render PR prompt")
	}
	return buf.String(), nil
}

// FallbackContent derives minimal PR content when the delegate cannot
// produce any. The title comes from the branch name and the body lists the
// commit history verbatim.
func FallbackContent(branch, commitLog string) *Content {
	body := "Automated pull request."
	if strings.TrimSpace(commitLog) != "" {
		body += "\n\n## Commits\n\n" + strings.TrimSpace(commitLog)
	}
	return &Content{Title: TitleFromBranch(branch), Body: body}
}

// TitleFromBranch turns a branch name like "feature/add-login-page" into a
// readable title ("Add login page").
func TitleFromBranch(branch string) string {
	name := branch
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return branch
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
