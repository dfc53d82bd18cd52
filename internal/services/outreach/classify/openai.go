package classify

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

type openAIClassifier struct {
	cfg OpenAIConfig
}

// NewOpenAIClassifier builds a model-backed classifier against the OpenAI
// responses API.
func NewOpenAIClassifier(cfg OpenAIConfig) Classifier {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: timeouts.Collaborator}
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = "https://api.openai.com/v1/responses"
	}
	return &openAIClassifier{cfg: cfg}
}

func (c *openAIClassifier) Classify(ctx context.Context, bodyText, participantName string) (Result, error) {
	responsesURL := strings.TrimSpace(c.cfg.ResponsesURL)
	apiKey := strings.TrimSpace(c.cfg.APIKey)
	model := strings.TrimSpace(c.cfg.Model)
	bodyText = strings.TrimSpace(bodyText)
	if apiKey == "" {
		return Result{}, fmt.Errorf("api key is required")
	}
	if model == "" {
		return Result{}, fmt.Errorf("model is required")
	}
	if bodyText == "" {
		return Result{}, fmt.Errorf("body text is required")
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": model,
		"input": classifyPrompt(bodyText, participantName),
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal classify request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return Result{}, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Credential material is sent only as an Authorization header and is never
	// echoed in errors or response payloads.
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classify request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return Result{}, fmt.Errorf("read classify error body: %w", err)
		}
		return Result{}, fmt.Errorf("classify request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	outputText, err := decodeOutputText(res.Body)
	if err != nil {
		return Result{}, err
	}
	return parseClassifyOutput(outputText), nil
}

func classifyPrompt(bodyText, participantName string) string {
	var sb strings.Builder
	sb.WriteString("Classify this reply to a speaking invitation")
	if name := strings.TrimSpace(participantName); name != "" {
		sb.WriteString(" from ")
		sb.WriteString(name)
	}
	sb.WriteString(".\n")
	sb.WriteString(`Answer with JSON only: {"classification": "confirmed|declined|more_info|meeting_requested|unclear", "confidence": 0.0-1.0}.`)
	sb.WriteString("\n\nReply:\n")
	sb.WriteString(bodyText)
	return sb.String()
}

// parseClassifyOutput reads {classification, confidence} out of model output.
// The model occasionally wraps its JSON in prose or markdown fences, so the
// extraction is lenient; anything unreadable is reported as unclear rather
// than failing the scan item.
func parseClassifyOutput(outputText string) Result {
	parsed := looseJSON(outputText)
	if !parsed.Exists() {
		return Result{Classification: LabelUnclear}
	}
	label := strings.ToLower(strings.TrimSpace(parsed.Get("classification").String()))
	switch label {
	case LabelConfirmed, LabelDeclined, LabelMoreInfo, LabelMeetingRequested, LabelUnclear:
	default:
		return Result{Classification: LabelUnclear}
	}
	confidence := parsed.Get("confidence").Float()
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{Classification: label, Confidence: confidence}
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
