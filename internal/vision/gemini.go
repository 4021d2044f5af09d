// Package vision extracts screenshot context through the Gemini API.
package vision

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash-latest"

const analysisInstruction = "You are the vision analysis AI that provides semantic meaning from the images to provide context " +
	"to send to another AI that will create a response to user. Do Not respond as the AI assistant " +
	"to the user. Instead, take user prompt input and try to extract all meaning from the photo " +
	"relevant to the user prompt (most images will be code based on the user's editor). You have to carefully " +
	"match code lines with the editor's line numbers. Then generate as much objective data about the image " +
	"for the AI assistant who will respond to the user."

var blockNone = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// Describer turns a screenshot plus the user's utterance into textual side
// context for the generation prompt.
type Describer struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Describer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}

	return &Describer{client: client, model: model}, nil
}

// Describe sends the image with the analysis instruction and returns the
// descriptive fragments of the first candidate.
func (d *Describer) Describe(ctx context.Context, prompt, imagePath string) ([]string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf("%s\nUSER PROMPT: %s", analysisInstruction, prompt)),
		genai.NewPartFromBytes(data, "image/jpeg"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](1),
		TopK:            genai.Ptr[float32](1),
		MaxOutputTokens: 2048,
		SafetySettings:  blockNone,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}

	var fragments []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			fragments = append(fragments, p.Text)
		}
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("no text parts in response")
	}
	return fragments, nil
}
