package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/security/validation"
	"github.com/yuin/goldmark"
	"google.golang.org/genai"
)

// AIContent is everything the dashboard shows from the AI provider.
type AIContent struct {
	Summary       string
	Insights      []models.Insight
	Score         models.PortfolioScore
	Alerts        []models.Alert
	NewsSummaries map[string]string
	Simulated     bool
}

// contentGenerator is the part of *genai.Models the service uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// AIService asks Gemini for portfolio commentary, and falls back to
// simulated commentary when there is no key, the mode is offline, or the
// call fails.
type AIService struct {
	gen      contentGenerator
	model    string
	mode     *ModeCoordinator
	fallback *FallbackProvider
}

// NewAIService connects to Gemini. An empty apiKey yields a service that
// always returns simulated content.
func NewAIService(ctx context.Context, apiKey, model string, mode *ModeCoordinator, fallback *FallbackProvider) (*AIService, error) {
	s := &AIService{model: model, mode: mode, fallback: fallback}
	if apiKey == "" {
		logger.L.Info("GEMINI_API_KEY not set, AI content will be simulated")
		return s, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	s.gen = client.Models
	return s, nil
}

type aiResponse struct {
	Summary  string `json:"summary"`
	Insights []struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		Category string `json:"category"`
	} `json:"insights"`
	Score struct {
		Score       int    `json:"score"`
		Explanation string `json:"explanation"`
	} `json:"score"`
	Alerts []struct {
		Ticker   string `json:"ticker"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
	} `json:"alerts"`
	NewsSummaries map[string]string `json:"newsSummaries"`
}

const aiPromptTemplate = `You are a portfolio analyst. Review the holdings and news below and answer
with a single JSON object of this shape:
{"summary": string,
 "insights": [{"title": string, "body": markdown string, "category": "summary"|"risk"|"suggestion"}],
 "score": {"score": integer 0-100, "explanation": string},
 "alerts": [{"ticker": string, "severity": "info"|"warning", "message": string}],
 "newsSummaries": {news id: one sentence summary}}
Amounts are in %s.

Holdings:
%s

News:
%s`

// Generate returns commentary for the holdings. It never fails; errors are
// logged and answered with simulated content.
func (s *AIService) Generate(ctx context.Context, holdings []models.Holding, news []models.NewsItem, currency string) AIContent {
	log := logger.FromContext(ctx)
	if s.gen == nil || s.mode.IsOffline() {
		return s.fallback.Content(holdings, currency)
	}
	if len(holdings) == 0 {
		return s.fallback.Content(holdings, currency)
	}

	content, err := s.generate(ctx, holdings, news, currency)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.mode.GoOffline("AI quota exceeded")
		}
		log.Warn("AI content generation failed, using simulated content", "error", err)
		return s.fallback.Content(holdings, currency)
	}
	return content
}

func (s *AIService) generate(ctx context.Context, holdings []models.Holding, news []models.NewsItem, currency string) (AIContent, error) {
	holdingsJSON, err := json.Marshal(holdings)
	if err != nil {
		return AIContent{}, err
	}
	type newsLine struct {
		ID       string `json:"id"`
		Ticker   string `json:"ticker"`
		Headline string `json:"headline"`
	}
	lines := make([]newsLine, 0, len(news))
	for _, n := range news {
		lines = append(lines, newsLine{ID: n.ID, Ticker: n.Ticker, Headline: n.Headline})
	}
	newsJSON, err := json.Marshal(lines)
	if err != nil {
		return AIContent{}, err
	}

	prompt := fmt.Sprintf(aiPromptTemplate, currency, holdingsJSON, newsJSON)
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if isQuotaError(err) {
			return AIContent{}, fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return AIContent{}, err
	}

	var parsed aiResponse
	text := strings.TrimSpace(resp.Text())
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```json"), "```")
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return AIContent{}, fmt.Errorf("failed to decode AI response: %w", err)
	}
	return parsed.toContent(), nil
}

func (r aiResponse) toContent() AIContent {
	out := AIContent{
		Summary:       validation.SanitizeText(r.Summary),
		Insights:      make([]models.Insight, 0, len(r.Insights)),
		Alerts:        make([]models.Alert, 0, len(r.Alerts)),
		NewsSummaries: make(map[string]string, len(r.NewsSummaries)),
		Score: models.PortfolioScore{
			Score:       max(0, min(100, r.Score.Score)),
			Explanation: validation.SanitizeText(r.Score.Explanation),
		},
	}
	for _, in := range r.Insights {
		out.Insights = append(out.Insights, models.Insight{
			ID:       "ai-" + uuid.NewString(),
			Title:    validation.SanitizeText(in.Title),
			Body:     MarkdownToHTML(in.Body),
			Category: validation.SanitizeText(in.Category),
		})
	}
	for _, a := range r.Alerts {
		severity := a.Severity
		if severity != "warning" {
			severity = "info"
		}
		out.Alerts = append(out.Alerts, models.Alert{
			ID:       "ai-" + uuid.NewString(),
			Ticker:   strings.ToUpper(validation.SanitizeText(a.Ticker)),
			Severity: severity,
			Message:  validation.SanitizeText(a.Message),
		})
	}
	for id, summary := range r.NewsSummaries {
		out.NewsSummaries[id] = validation.SanitizeText(summary)
	}
	return out
}

// MarkdownToHTML renders markdown and strips anything unsafe from the result.
func MarkdownToHTML(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "<p>" + validation.SanitizeText(md) + "</p>"
	}
	return validation.SanitizeHTML(buf.String())
}

// isQuotaError reports whether err is Gemini's resource exhausted answer.
func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}
