package integrations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// TemplateGenerator renders artifacts offline from the request fields. It
// is used when no model provider is configured.
type TemplateGenerator struct {
	now func() time.Time
}

// NewTemplateGenerator creates an offline generator
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{now: time.Now}
}

// Name identifies the generator in logs and metrics
func (g *TemplateGenerator) Name() string { return "template" }

// Generate renders the artifact body
func (g *TemplateGenerator) Generate(ctx context.Context, req artifact.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", g.now().Format("January 2, 2006"))
	fmt.Fprintf(&b, "RE: %s\n\n", req.Title)

	if name, ok := req.FormData["recipientName"]; ok {
		fmt.Fprintf(&b, "Dear %v,\n\n", name)
	} else {
		b.WriteString("To whom it may concern,\n\n")
	}

	fmt.Fprintf(&b, "This %s concerns the matter described below.\n\n", describe(req))

	if len(req.FormData) > 0 {
		keys := make([]string, 0, len(req.FormData))
		for k := range req.FormData {
			if k == "recipientName" || k == "senderName" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", humanize(k), req.FormData[k])
		}
		b.WriteString("\n")
	}

	if p := strings.TrimSpace(req.Prompt); p != "" {
		b.WriteString(p)
		b.WriteString("\n\n")
	}

	switch req.UrgencyLevel {
	case artifact.UrgencyRush:
		b.WriteString("We require your response within 72 hours of receipt of this letter.\n\n")
	case artifact.UrgencyUrgent:
		b.WriteString("We require your response within 7 days of receipt of this letter.\n\n")
	default:
		b.WriteString("We require your response within 14 days of receipt of this letter.\n\n")
	}

	b.WriteString("Sincerely,\n\n")
	if name, ok := req.FormData["senderName"]; ok {
		fmt.Fprintf(&b, "%v\n", name)
	}
	return b.String(), nil
}

func describe(req artifact.Request) string {
	if req.Kind == artifact.KindDocument {
		if dt, ok := artifact.LookupDocumentType(req.Category, req.Type); ok {
			return strings.ToLower(dt.Name) + " notice"
		}
		return "notice"
	}
	t := humanize(req.Type)
	if t == "" || t == "general" {
		return "letter"
	}
	if strings.HasSuffix(t, "letter") {
		return t
	}
	return t + " letter"
}
