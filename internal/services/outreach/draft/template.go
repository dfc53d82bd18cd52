package draft

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"sequent.dev/internal/platform/branding"
)

// TemplateGenerator is the deterministic, network-free fallback generator.
// Its output depends only on the request, so delivery previews and tests are
// reproducible.
type TemplateGenerator struct{}

// NewTemplateGenerator builds the fallback generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

var invitationBodyTemplate = template.Must(template.New("invitation_body").Parse(
	"Dear {{.ParticipantName}},\n" +
		"\n" +
		"We are assembling the {{.PhaseLabel}} lineup and would be honored to have you take part{{with .Track}} in the {{.}} track{{end}}.\n" +
		"{{- if .LeverageNote}}\n" +
		"\n" +
		"{{.LeverageNote}}\n" +
		"{{- end}}\n" +
		"{{- if .CompanyLine}}\n" +
		"\n" +
		"{{.CompanyLine}}\n" +
		"{{- end}}\n" +
		"\n" +
		"Would you be open to joining? We would be glad to share details.\n" +
		"\n" +
		"Warm regards,\n" +
		"The {{.AppName}} program team\n"))

var followUpBodyTemplate = template.Must(template.New("follow_up_body").Parse(
	"Dear {{.ParticipantName}},\n" +
		"\n" +
		"Thank you for your reply{{with .ResponseSnippet}} (\"{{.}}\"){{end}}.\n" +
		"\n" +
		"{{.FollowUpLine}}\n" +
		"{{- if .CompanyLine}}\n" +
		"\n" +
		"{{.CompanyLine}}\n" +
		"{{- end}}\n" +
		"\n" +
		"Warm regards,\n" +
		"The {{.AppName}} program team\n"))

type templateData struct {
	ParticipantName string
	PhaseLabel      string
	Track           string
	LeverageNote    string
	CompanyLine     string
	FollowUpLine    string
	ResponseSnippet string
	AppName         string
}

// Generate renders the deterministic draft for the request.
func (g *TemplateGenerator) Generate(_ context.Context, request Request) (Draft, error) {
	name := strings.TrimSpace(request.ParticipantName)
	if name == "" {
		return Draft{}, fmt.Errorf("participant name is required")
	}

	data := templateData{
		ParticipantName: name,
		PhaseLabel:      strings.TrimSpace(request.Phase),
		Track:           strings.TrimSpace(request.Track),
		LeverageNote:    strings.TrimSpace(request.LeverageNote),
		ResponseSnippet: strings.TrimSpace(request.ResponseSnippet),
		AppName:         branding.AppName,
	}
	if data.PhaseLabel == "" {
		data.PhaseLabel = "upcoming"
	}

	subject := "Invitation to speak"
	if data.Track != "" {
		subject += ": " + data.Track
	}

	var sb strings.Builder
	if request.IsFollowUp {
		data.CompanyLine = confirmedLine("Confirmed so far: ", request.ConfirmedNames)
		data.FollowUpLine = followUpLine(request.ResponseClassification)
		if err := followUpBodyTemplate.Execute(&sb, data); err != nil {
			return Draft{}, fmt.Errorf("render follow-up body: %w", err)
		}
		return Draft{Subject: "Re: " + subject, Body: sb.String()}, nil
	}

	data.CompanyLine = companyLine(request.ConfirmedNames)
	if err := invitationBodyTemplate.Execute(&sb, data); err != nil {
		return Draft{}, fmt.Errorf("render invitation body: %w", err)
	}
	return Draft{Subject: subject, Body: sb.String()}, nil
}

func followUpLine(classification string) string {
	switch strings.ToLower(strings.TrimSpace(classification)) {
	case "more_info":
		return "Here is a closer look at what we have in mind, and we are happy to answer anything else."
	case "meeting_requested":
		return "We would be glad to set up a short call at a time that suits you."
	default:
		return "We wanted to follow up on our invitation in case it slipped past."
	}
}

func companyLine(names []string) string {
	joined := joinNames(names)
	if joined == "" {
		return ""
	}
	verb := "have"
	if len(trimmedNames(names)) == 1 {
		verb = "has"
	}
	return "You would be in excellent company: " + joined + " " + verb + " already confirmed."
}

func confirmedLine(prefix string, names []string) string {
	joined := joinNames(names)
	if joined == "" {
		return ""
	}
	return prefix + joined + "."
}

func joinNames(names []string) string {
	trimmed := trimmedNames(names)
	switch len(trimmed) {
	case 0:
		return ""
	case 1:
		return trimmed[0]
	default:
		return strings.Join(trimmed[:len(trimmed)-1], ", ") + " and " + trimmed[len(trimmed)-1]
	}
}

func trimmedNames(names []string) []string {
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		if value := strings.TrimSpace(name); value != "" {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}
