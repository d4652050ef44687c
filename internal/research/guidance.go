// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// guidanceTask heads every guidance prompt. MockBackend keys on it.
const guidanceTask = "Task: outreach guidance"

// GuidanceRequest describes the prospect to write outreach guidance for.
type GuidanceRequest struct {
	Prospect types.Prospect
	Contacts []types.Contact

	// Seller names the user's own company and may be empty.
	Seller   string
	Products []string
}

// guidancePromptTmpl asks for a JSON object that ParseGuidance decodes.
var guidancePromptTmpl = template.Must(template.New("guidance").Funcs(template.FuncMap{"join": strings.Join}).Parse(`Task: outreach guidance

You are a senior business development advisor in the pharmaceutical B2B market. Write outreach guidance for {{if .Seller}}{{.Seller}}{{else}}a supplier{{end}}{{if .Products}} selling {{join .Products ", "}}{{end}} to the prospect below.

Prospect: {{.Prospect.Name}}
{{- with .Prospect.Country}}
Country: {{.}}{{end}}
{{- with .Prospect.TargetSegment}}
Segment: {{.}}{{end}}
{{- with .Prospect.PurchasingVolume}}
Purchasing volume: {{.}}{{end}}
{{- with .Prospect.KeyProducts}}
Key products: {{join . ", "}}{{end}}
{{- with .Prospect.Description}}
Description: {{.}}{{end}}
{{- if .Contacts}}

Known contacts:
{{- range .Contacts}}
- {{.Name}}{{with .Role}}, {{.}}{{end}}{{with .Notes}} ({{.}}){{end}}
{{- end}}
{{- end}}

Answer with a single JSON object and nothing else, shaped as:
{"talkingPoints": ["..."], "decisionMakers": [{"name": "", "title": "", "influence": "", "interests": ""}], "outreachStrategy": {"recommendedApproach": "", "keyDifferentiators": ["..."], "nextSteps": ["..."]}}
Only name decision makers from the known contacts or whose role you can verify.
`))

// RenderGuidancePrompt builds the outreach guidance prompt for req.
func RenderGuidancePrompt(req GuidanceRequest) (string, error) {
	var buf bytes.Buffer
	if err := guidancePromptTmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("rendering guidance prompt: %w", err)
	}
	return buf.String(), nil
}

// jsonFence matches a fenced code block, optionally tagged json.
var jsonFence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// ParseGuidance reads the guidance object out of a model answer. The object
// may be fenced or surrounded by prose. An answer without a readable object
// is an upstream error.
func ParseGuidance(text string) (types.Guidance, error) {
	text = StripReasoning(text)
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return types.Guidance{}, fmt.Errorf("no guidance object in answer: %w", ErrUpstream)
	}

	var g types.Guidance
	if err := json.Unmarshal([]byte(text[start:end+1]), &g); err != nil {
		return types.Guidance{}, fmt.Errorf("parsing guidance JSON: %v: %w", err, ErrUpstream)
	}
	return normalizeGuidance(g), nil
}

// EmptyGuidance is guidance with every list present and empty.
func EmptyGuidance() types.Guidance {
	return normalizeGuidance(types.Guidance{})
}

func normalizeGuidance(g types.Guidance) types.Guidance {
	if g.TalkingPoints == nil {
		g.TalkingPoints = []string{}
	}
	if g.DecisionMakers == nil {
		g.DecisionMakers = []types.DecisionMaker{}
	}
	if g.OutreachStrategy.KeyDifferentiators == nil {
		g.OutreachStrategy.KeyDifferentiators = []string{}
	}
	if g.OutreachStrategy.NextSteps == nil {
		g.OutreachStrategy.NextSteps = []string{}
	}
	return g
}

// Guidance asks the backend for outreach guidance on a prospect. Answers are
// cached like research reports.
func (s *Service) Guidance(ctx context.Context, req GuidanceRequest) (types.Guidance, error) {
	if strings.TrimSpace(req.Prospect.Name) == "" {
		return types.Guidance{}, fmt.Errorf("prospect name is required: %w", ErrInvalidRequest)
	}
	if s.backend == nil {
		return types.Guidance{}, fmt.Errorf("no research backend: %w", ErrNotConfigured)
	}

	prompt, err := RenderGuidancePrompt(req)
	if err != nil {
		return types.Guidance{}, err
	}
	text, err := s.fetch(ctx, prompt)
	if err != nil {
		return types.Guidance{}, fmt.Errorf("guidance for %s: %w", req.Prospect.Name, err)
	}
	g, err := ParseGuidance(text)
	if err != nil {
		return types.Guidance{}, fmt.Errorf("guidance for %s: %w", req.Prospect.Name, err)
	}

	s.logger.Info("guidance generated",
		zap.String("prospect", req.Prospect.Name),
		zap.Int("talking_points", len(g.TalkingPoints)),
		zap.Int("decision_makers", len(g.DecisionMakers)),
	)
	return g, nil
}
