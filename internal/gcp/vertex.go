package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/pitchlens/internal/chunking"
)

// DefaultGeminiModel is used when GEMINI_MODEL is not set.
const DefaultGeminiModel = "gemini-2.5-flash-001"

// --- Analysis Prompts ---
const RiskPrompt = "Analyze the following pitch deck text and provide a risk assessment: "
const FinancialsPrompt = "Extract key financial metrics from this text: "

// --- Extractor Model Prompts ---
const ExtractorSystemPrompt = "You are an OCR engine. Your task is to transcribe every piece of text in a PDF document exactly as it appears, in reading order."
const ExtractorUserPrompt = `Transcribe all text in the provided PDF document.

Rules:
1. Preserve the reading order of each page, top to bottom, and the order of the pages.
2. Reproduce numbers, currency amounts, percentages and dates exactly.
3. Render tables as plain text rows, one row per line, cells separated by " | ".
4. Do not summarize, translate, or add commentary.

Return ONLY the transcribed text.`

// ErrModelRefusal is returned when the model declines the request instead of answering it.
var ErrModelRefusal = errors.New("model response indicates refusal")

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// VertexClient holds all pre-configured generative models for the pipeline.
type VertexClient struct {
	RiskModel       *genai.GenerativeModel
	FinancialsModel *genai.GenerativeModel
	ExtractorModel  *genai.GenerativeModel
	baseClient      *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	riskModel := baseClient.GenerativeModel(modelName)
	financialsModel := baseClient.GenerativeModel(modelName)

	// --- Configure the extractor model ---
	extractorModel := baseClient.GenerativeModel(modelName)
	extractorModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ExtractorSystemPrompt)},
	}
	extractorModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	return &VertexClient{
		RiskModel:       riskModel,
		FinancialsModel: financialsModel,
		ExtractorModel:  extractorModel,
		baseClient:      baseClient,
	}, nil
}

// AssessRisk runs the risk assessment prompt over the deck text.
func (c *VertexClient) AssessRisk(ctx context.Context, fullText string) (string, error) {
	return generateText(ctx, c.RiskModel, genai.Text(RiskPrompt+fullText))
}

// SummarizeFinancials runs the financial metrics prompt over the deck text.
func (c *VertexClient) SummarizeFinancials(ctx context.Context, fullText string) (string, error) {
	return generateText(ctx, c.FinancialsModel, genai.Text(FinancialsPrompt+fullText))
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// GeminiExtractor implements chunking.TextExtractor by asking Gemini to transcribe the PDF.
type GeminiExtractor struct {
	client *VertexClient
}

func NewGeminiExtractor(client *VertexClient) *GeminiExtractor {
	return &GeminiExtractor{client: client}
}

func (e *GeminiExtractor) Extract(ctx context.Context, ref chunking.DocumentRef) (string, error) {
	filePart := genai.FileData{
		MIMEType: "application/pdf",
		FileURI:  ref.URI(),
	}
	return generateText(ctx, e.client.ExtractorModel, filePart, genai.Text(ExtractorUserPrompt))
}

func generateText(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (string, error) {
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	text := responseText(resp)
	if isRefusal(text) {
		return "", fmt.Errorf("%w: %q", ErrModelRefusal, text)
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate and strips code fences.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	contentStr := strings.TrimSpace(b.String())
	contentStr = strings.TrimPrefix(contentStr, "```markdown")
	contentStr = strings.TrimPrefix(contentStr, "```")
	contentStr = strings.TrimSuffix(contentStr, "```")
	return strings.TrimSpace(contentStr)
}

func isRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
