// Package draft produces outreach message drafts for invitation and
// follow-up emails.
package draft

import "context"

// Draft sources recorded on generated drafts.
const (
	// SourceOpenAI marks a draft produced by the model-backed generator.
	SourceOpenAI = "openai"
	// SourceTemplate marks a draft produced by the deterministic fallback.
	SourceTemplate = "template"
)

// Request carries everything a generator may use. ConfirmedNames is the
// social-proof roster in presentation order; ResponseClassification and
// ResponseSnippet describe the last classified reply and only matter for
// follow-ups.
type Request struct {
	ParticipantName        string
	Organization           string
	Phase                  string
	Track                  string
	LeverageNote           string
	ConfirmedNames         []string
	IsFollowUp             bool
	ResponseClassification string
	ResponseSnippet        string
}

// Draft is one generated outreach message.
type Draft struct {
	Subject string
	Body    string
}

// Generator produces a draft for the given request.
type Generator interface {
	Generate(ctx context.Context, request Request) (Draft, error)
}
