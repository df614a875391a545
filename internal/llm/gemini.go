package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

type GeminiPart struct {
	Text string `json:"text"`
}
type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}
type GeminiRequestBody struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// Service is the AI assist used by the pipeline: enriching a heuristic
// analysis with better report content, and a quality pass over drafts.
// Both are advisory; callers must tolerate failure and fall back to
// their deterministic paths.
type Service interface {
	EnrichAnalysis(ctx context.Context, record *model.LogRecord, analysis *model.BugAnalysis) (*model.BugAnalysis, error)
	ReviewDraft(ctx context.Context, draft *model.IssueDraft) (*model.ReviewFeedback, error)
}

type geminiService struct {
	apiKey     string
	httpClient *http.Client
	modelID    string
	baseURL    string
}

func NewGeminiService(cfg *config.Config) (Service, error) {
	return &geminiService{
		apiKey: cfg.Gemini.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Gemini.Timeout,
		},
		modelID: cfg.Gemini.ModelID,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
	}, nil
}

// enrichmentResult is the JSON shape the model is asked to return for
// analysis enrichment.
type enrichmentResult struct {
	TitleHint          string   `json:"title_hint"`
	AffectedComponents []string `json:"affected_components"`
	PossibleCauses     []string `json:"possible_causes"`
	SuggestedLabels    []string `json:"suggested_labels"`
}

func (s *geminiService) EnrichAnalysis(ctx context.Context, record *model.LogRecord, analysis *model.BugAnalysis) (*model.BugAnalysis, error) {
	log.Debug().Str("message", record.Message).Msg("Gemini LLM Service: Enriching bug analysis")

	prompt := buildEnrichmentPrompt(record, analysis)
	var result enrichmentResult
	if err := s.generateJSON(ctx, prompt, &result); err != nil {
		return nil, err
	}

	// The enrichment only improves report content. Classification,
	// confidence and the filing decision stay with the deterministic
	// classifier.
	enriched := *analysis
	if result.TitleHint != "" {
		enriched.TitleHint = result.TitleHint
	}
	if len(result.AffectedComponents) > 0 {
		enriched.AffectedComponents = result.AffectedComponents
	}
	if len(result.PossibleCauses) > 0 {
		enriched.PossibleCauses = result.PossibleCauses
	}
	if len(result.SuggestedLabels) > 0 {
		enriched.SuggestedLabels = result.SuggestedLabels
	}
	return &enriched, nil
}

// qualityResult is the JSON shape for the draft quality review.
type qualityResult struct {
	Approved     bool     `json:"approved"`
	Deficiencies []string `json:"deficiencies"`
	Suggestions  []string `json:"suggestions"`
}

func (s *geminiService) ReviewDraft(ctx context.Context, draft *model.IssueDraft) (*model.ReviewFeedback, error) {
	log.Debug().Str("title", draft.Title).Int("revision", draft.Revision).Msg("Gemini LLM Service: Reviewing issue draft")

	prompt := buildReviewPrompt(draft)
	var result qualityResult
	if err := s.generateJSON(ctx, prompt, &result); err != nil {
		return nil, err
	}

	return &model.ReviewFeedback{
		Approved:     result.Approved,
		Deficiencies: result.Deficiencies,
		Suggestions:  result.Suggestions,
	}, nil
}

// generateJSON runs one generateContent call and decodes the JSON
// object embedded in the response text into out.
func (s *geminiService) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	requestBody := GeminiRequestBody{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: prompt}}},
		},
	}
	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal Gemini request body")
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	respBodyBytes, err := s.callGeminiAPI(ctx, bodyBytes)
	if err != nil {
		return err
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBodyBytes, &geminiResp); err != nil {
		log.Error().Err(err).Bytes("response_body", respBodyBytes).Msg("Failed to unmarshal Gemini API response")
		return fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		log.Error().Interface("gemini_response", geminiResp).Msg("Gemini response has no candidates or parts")
		return errors.New("received empty or invalid response structure from Gemini")
	}

	generatedText := geminiResp.Candidates[0].Content.Parts[0].Text
	cleanedJSON := cleanLLMJsonOutput(generatedText)
	if cleanedJSON == "" {
		log.Error().Str("raw_text", generatedText).Msg("Failed to extract valid JSON from Gemini response text")
		return errors.New("LLM did not return valid JSON in its response")
	}

	decoder := json.NewDecoder(strings.NewReader(cleanedJSON))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		log.Error().Err(err).Str("cleaned_json", cleanedJSON).Msg("Failed to unmarshal cleaned JSON from Gemini response")
		return fmt.Errorf("failed to parse structured result from LLM: %w", err)
	}
	return nil
}

func (s *geminiService) callGeminiAPI(ctx context.Context, bodyBytes []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.modelID, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini HTTP request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Gemini HTTP request failed")
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read Gemini response body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status_code", resp.StatusCode).Bytes("response_body", respBodyBytes).Msg("Gemini API returned non-OK status")
		return nil, fmt.Errorf("gemini API error: status code %d", resp.StatusCode)
	}

	return respBodyBytes, nil
}

func cleanLLMJsonOutput(raw string) string {
	startIndex := strings.Index(raw, "{")
	if startIndex == -1 {
		return ""
	}

	endIndex := strings.LastIndex(raw, "}")
	if endIndex == -1 || endIndex < startIndex {
		return ""
	}

	potentialJson := raw[startIndex : endIndex+1]

	var js map[string]interface{}
	if json.Unmarshal([]byte(potentialJson), &js) == nil {
		return potentialJson
	}

	log.Warn().Str("potential_json", potentialJson).Msg("Could not validate potential JSON extracted from LLM response")
	return ""
}

func buildEnrichmentPrompt(record *model.LogRecord, analysis *model.BugAnalysis) string {
	return fmt.Sprintf(`
Analyze the following application log that was classified as a potential bug. Respond *ONLY* with a valid JSON object matching the specified format, without any introductory text or markdown formatting.

Log level: %s
Log message: %s
Stack trace:
%s

Heuristic classification: severity=%s category=%s

Desired JSON Output Format:
{
  "title_hint": string,            // concise issue title, max 80 chars
  "affected_components": [string], // component or subsystem names
  "possible_causes": [string],     // most likely root causes, max 3
  "suggested_labels": [string]     // lowercase issue labels
}

JSON Output:`, record.Level, record.Message, record.StackTrace, analysis.Severity, analysis.Category)
}

func buildReviewPrompt(draft *model.IssueDraft) string {
	return fmt.Sprintf(`
Review the following GitHub issue draft for clarity, completeness and actionability. Respond *ONLY* with a valid JSON object, without any introductory text or markdown formatting.

Title: %s

Body:
%s

Desired JSON Output Format:
{
  "approved": boolean,       // true if the draft is ready to publish
  "deficiencies": [string],  // what is missing or wrong, empty if approved
  "suggestions": [string]    // concrete improvements
}

JSON Output:`, draft.Title, draft.Body)
}
