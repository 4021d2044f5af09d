// Package translate localizes replies: language detection over the user's
// utterance, translation of the generated text back into that language.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/bregydoc/gtranslate"
)

// FallbackLanguage is used whenever detection cannot produce a code.
const FallbackLanguage = "en"

// Detector infers the ISO 639-1 language code of an utterance.
type Detector struct{}

// Detect returns the detected code, or the fallback for empty or
// undetectable text. Never fails.
func (Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return FallbackLanguage
	}
	code := whatlanggo.Detect(text).Lang.Iso6391()
	if code == "" {
		return FallbackLanguage
	}
	return code
}

// Translator converts text between languages through the Google Translate
// surface.
type Translator struct{}

func NewTranslator() *Translator { return &Translator{} }

// Translate renders text in the target language, detecting the source.
func (*Translator) Translate(_ context.Context, text, target string) (string, error) {
	out, err := gtranslate.TranslateWithParams(text, gtranslate.TranslationParams{
		From: "auto",
		To:   target,
	})
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	return out, nil
}
