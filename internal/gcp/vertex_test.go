package gcp

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
)

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{name: "single part", resp: textResponse(genai.Text("  Revenue: $1.2M ARR \n")), want: "Revenue: $1.2M ARR"},
		{name: "multiple parts", resp: textResponse(genai.Text("Team risk. "), genai.Text("Market risk.")), want: "Team risk. Market risk."},
		{name: "fenced", resp: textResponse(genai.Text("```markdown\n# Risks\n```")), want: "# Risks"},
		{name: "non-text parts skipped", resp: textResponse(genai.FileData{FileURI: "gs://b/k"}, genai.Text("ok")), want: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, responseText(tt.resp))
		})
	}
}

func TestIsRefusal(t *testing.T) {
	assert.True(t, isRefusal("I am unable to help with that request."))
	assert.True(t, isRefusal("As a large language model, I cannot ..."))
	assert.False(t, isRefusal("Key risks: customer concentration, burn rate."))
	assert.False(t, isRefusal(""))
}
