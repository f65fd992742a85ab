package integrations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

const systemPrompt = `You are an experienced attorney drafting correspondence on behalf of a client.
Write in a formal, professional legal tone. Be firm but courteous. Cite the facts provided,
state clearly what is being requested of the recipient and by when, and close with a
signature block for the client. Do not invent facts that were not provided.`

// BuildPrompt renders the user prompt for a generation request.
func BuildPrompt(req artifact.Request) string {
	var b strings.Builder

	switch req.Kind {
	case artifact.KindDocument:
		name := req.Type
		if dt, ok := artifact.LookupDocumentType(req.Category, req.Type); ok {
			name = dt.Name
		}
		fmt.Fprintf(&b, "Draft a %s document titled %q.\n", name, req.Title)
	default:
		fmt.Fprintf(&b, "Draft a %s letter titled %q.\n", humanize(req.Type), req.Title)
	}

	switch req.UrgencyLevel {
	case artifact.UrgencyUrgent:
		b.WriteString("The matter is urgent: ask for a response within 7 days.\n")
	case artifact.UrgencyRush:
		b.WriteString("The matter is time-critical: ask for a response within 72 hours.\n")
	default:
		b.WriteString("Ask for a response within 14 days.\n")
	}

	if len(req.FormData) > 0 {
		b.WriteString("\nDetails provided by the client:\n")
		keys := make([]string, 0, len(req.FormData))
		for k := range req.FormData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", humanize(k), req.FormData[k])
		}
	}

	if strings.TrimSpace(req.Prompt) != "" {
		b.WriteString("\nAdditional instructions:\n")
		b.WriteString(strings.TrimSpace(req.Prompt))
		b.WriteString("\n")
	}

	return b.String()
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.TrimSpace(s)
}
