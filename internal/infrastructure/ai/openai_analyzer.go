package ai

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
	"dormdrop/pkg/logger"
)

// OpenAIAnalyzer drafts listing copy from photos using a vision-capable
// chat completion model.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(apiKey, model string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func buildPrompt(categoryHints []string) string {
	var b strings.Builder
	b.WriteString("You are helping a college student sell an item on a campus marketplace. ")
	b.WriteString("Look at the photos and draft a listing. ")
	b.WriteString("Mention key visible features, brand/model if obvious, approximate size, and condition. ")
	b.WriteString("Keep the title under 60 characters and the description under 500 characters. ")
	if len(categoryHints) > 0 {
		b.WriteString("Choose suggested_categories only from: ")
		b.WriteString(strings.Join(categoryHints, ", "))
		b.WriteString(". ")
	}
	b.WriteString(`Respond with strict JSON only, no prose: {"title": string, "description": string, "suggested_categories": [string], "confidence": number between 0 and 1}`)
	return b.String()
}

func buildExtractPrompt(titleHint string, categoryHints []string) string {
	var b strings.Builder
	b.WriteString("You are extracting structured attributes from photos of a used item for price comparison. ")
	if titleHint != "" {
		b.WriteString("The seller describes it as: ")
		b.WriteString(titleHint)
		b.WriteString(". ")
	}
	if len(categoryHints) > 0 {
		b.WriteString("Likely categories: ")
		b.WriteString(strings.Join(categoryHints, ", "))
		b.WriteString(". ")
	}
	b.WriteString(`Respond with strict JSON only, no prose: {"item_type": string, "brand": string or "", "model": string or "", "condition": one of "new","like_new","good","fair","parts", "keywords": [3-8 short search terms]}`)
	return b.String()
}

func (a *OpenAIAnalyzer) vision(ctx context.Context, prompt string, imageURLs []string, maxTokens int) (string, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for _, url := range imageURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    url,
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	if err != nil {
		return "", errors.BadGateway("Listing analysis is temporarily unavailable", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.BadGateway("Listing analysis returned no result", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, imageURLs []string, categoryHints []string) (*service.ListingDraft, error) {
	content, err := a.vision(ctx, buildPrompt(categoryHints), imageURLs, 600)
	if err != nil {
		return nil, err
	}

	draft, err := parseDraft(content)
	if err != nil {
		logger.Error("ai: unparseable analysis response: %v", err)
		return nil, errors.BadGateway("Listing analysis returned an unreadable result", err)
	}

	return draft, nil
}

func (a *OpenAIAnalyzer) ExtractAttributes(ctx context.Context, imageURLs []string, titleHint string, categoryHints []string) (*service.ItemAttributes, error) {
	content, err := a.vision(ctx, buildExtractPrompt(titleHint, categoryHints), imageURLs, 350)
	if err != nil {
		return nil, err
	}

	attrs, err := parseAttributes(content)
	if err != nil {
		logger.Error("ai: unparseable attribute response: %v", err)
		return nil, errors.BadGateway("Listing analysis returned an unreadable result", err)
	}

	return attrs, nil
}

// extractJSON tolerates fenced or ragged model output and pulls the JSON
// object out of it.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Fall back to the outermost braces if the model added prose anyway.
	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	return text
}

func parseDraft(raw string) (*service.ListingDraft, error) {
	var draft service.ListingDraft
	if err := json.Unmarshal([]byte(extractJSON(raw)), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func parseAttributes(raw string) (*service.ItemAttributes, error) {
	var attrs service.ItemAttributes
	if err := json.Unmarshal([]byte(extractJSON(raw)), &attrs); err != nil {
		return nil, err
	}
	return &attrs, nil
}
