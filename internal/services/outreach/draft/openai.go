package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"sequent.dev/internal/platform/timeouts"
)

// OpenAIConfig configures the OpenAI responses endpoint and HTTP behavior.
type OpenAIConfig struct {
	ResponsesURL string
	Model        string
	APIKey       string
	HTTPClient   *http.Client
}

type openAIGenerator struct {
	cfg OpenAIConfig
}

// NewOpenAIGenerator builds a model-backed draft generator against the OpenAI
// responses API. Callers fall back to the template generator on error.
func NewOpenAIGenerator(cfg OpenAIConfig) Generator {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: timeouts.Collaborator}
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = "https://api.openai.com/v1/responses"
	}
	return &openAIGenerator{cfg: cfg}
}

func (g *openAIGenerator) Generate(ctx context.Context, request Request) (Draft, error) {
	apiKey := strings.TrimSpace(g.cfg.APIKey)
	model := strings.TrimSpace(g.cfg.Model)
	name := strings.TrimSpace(request.ParticipantName)
	if apiKey == "" {
		return Draft{}, fmt.Errorf("api key is required")
	}
	if model == "" {
		return Draft{}, fmt.Errorf("model is required")
	}
	if name == "" {
		return Draft{}, fmt.Errorf("participant name is required")
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": model,
		"input": draftPrompt(request),
	})
	if err != nil {
		return Draft{}, fmt.Errorf("marshal draft request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return Draft{}, fmt.Errorf("build draft request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("draft request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return Draft{}, fmt.Errorf("read draft error body: %w", err)
		}
		return Draft{}, fmt.Errorf("draft request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	outputText, err := decodeOutputText(res.Body)
	if err != nil {
		return Draft{}, err
	}
	return parseDraftOutput(outputText)
}

func draftPrompt(request Request) string {
	var sb strings.Builder
	if request.IsFollowUp {
		sb.WriteString("Write a short, warm follow-up email for a speaking invitation.\n")
	} else {
		sb.WriteString("Write a short, warm invitation email asking someone to speak.\n")
	}
	sb.WriteString(`Answer with JSON only: {"subject": "...", "body": "..."}.`)
	sb.WriteString("\n\nRecipient: ")
	sb.WriteString(strings.TrimSpace(request.ParticipantName))
	if org := strings.TrimSpace(request.Organization); org != "" {
		sb.WriteString(" (")
		sb.WriteString(org)
		sb.WriteString(")")
	}
	if track := strings.TrimSpace(request.Track); track != "" {
		sb.WriteString("\nTrack: ")
		sb.WriteString(track)
	}
	if phase := strings.TrimSpace(request.Phase); phase != "" {
		sb.WriteString("\nOutreach phase: ")
		sb.WriteString(phase)
	}
	if note := strings.TrimSpace(request.LeverageNote); note != "" {
		sb.WriteString("\nWhy they matter: ")
		sb.WriteString(note)
	}
	if names := joinNames(request.ConfirmedNames); names != "" {
		sb.WriteString("\nAlready confirmed: ")
		sb.WriteString(names)
	}
	if request.IsFollowUp {
		if classification := strings.TrimSpace(request.ResponseClassification); classification != "" {
			sb.WriteString("\nTheir last reply was classified as: ")
			sb.WriteString(classification)
		}
		if snippet := strings.TrimSpace(request.ResponseSnippet); snippet != "" {
			sb.WriteString("\nTheir last reply: ")
			sb.WriteString(snippet)
		}
	}
	return sb.String()
}

// parseDraftOutput reads {subject, body} out of model output. Extraction is
// lenient about prose or markdown fences around the JSON, but a draft without
// both fields is an error so the caller can fall back to the template.
func parseDraftOutput(outputText string) (Draft, error) {
	parsed := looseJSON(outputText)
	if !parsed.Exists() {
		return Draft{}, fmt.Errorf("draft output is not JSON")
	}
	subject := strings.TrimSpace(parsed.Get("subject").String())
	body := strings.TrimSpace(parsed.Get("body").String())
	if subject == "" || body == "" {
		return Draft{}, fmt.Errorf("draft output missing subject or body")
	}
	return Draft{Subject: subject, Body: body}, nil
}

// looseJSON parses text as JSON, falling back to the outermost brace-delimited
// substring when the payload is wrapped in prose or code fences.
func looseJSON(text string) gjson.Result {
	text = strings.TrimSpace(text)
	if gjson.Valid(text) {
		return gjson.Parse(text)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if gjson.Valid(candidate) {
			return gjson.Parse(candidate)
		}
	}
	return gjson.Result{}
}

// decodeOutputText extracts the assistant text from a responses API payload,
// preferring the aggregate output_text field.
func decodeOutputText(body io.Reader) (string, error) {
	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	outputText := strings.TrimSpace(payload.OutputText)
	if outputText == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if strings.TrimSpace(content.Text) != "" {
					outputText = strings.TrimSpace(content.Text)
					break
				}
			}
			if outputText != "" {
				break
			}
		}
	}
	if outputText == "" {
		return "", fmt.Errorf("response missing output text")
	}
	return outputText, nil
}
