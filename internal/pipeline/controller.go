// Package pipeline orchestrates one utterance end to end: intent
// classification, side-context gathering, generation, translation, and the
// downstream editor and speech effects.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "log/slog"

	"codevox/internal/codeblock"
	"codevox/internal/convo"
	"codevox/internal/host"
	"codevox/internal/intent"
)

// Origin distinguishes how an utterance arrived. Text input is lower-cased
// and trimmed before use; voice input is taken as transcribed.
type Origin int

const (
	OriginVoice Origin = iota
	OriginText
)

// ChatBackend generates assistant text from an ordered turn history. The
// same backend serves generation and intent classification; the classifier
// runs in its own re-seeded request context.
type ChatBackend interface {
	Complete(ctx context.Context, turns []convo.Turn) (string, error)
}

// VisionBackend describes a screenshot in the light of the user's prompt.
type VisionBackend interface {
	Describe(ctx context.Context, prompt, imagePath string) ([]string, error)
}

// Translator renders text in the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// LanguageDetector infers the utterance's language code. It never fails; a
// fallback code is returned instead.
type LanguageDetector interface {
	Detect(text string) string
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Screenshotter captures the screen and returns the image path.
type Screenshotter interface {
	Capture() (string, error)
}

// Speaker plays synthesized speech; it must not block the pipeline.
type Speaker interface {
	Speak(text string)
}

// Emitter delivers commands to the editor extension.
type Emitter interface {
	Emit(cmd host.Command)
}

// AssistantSystemPrompt seeds the shared conversation session.
const AssistantSystemPrompt = "You are a coding assistant AI in real-time, capable of taking screenshots and getting data from the clipboard. " +
	"Your user may ask for code explanation, debugging, or requesting alternatives. " +
	"If the user mentions a specific line number, function, code block, or class, focus your response on that part of the code. " +
	"Keep track of the conversation context to provide coherent and relevant responses. " +
	"When explaining code, break down the functionality step by step. " +
	"For debugging, identify potential issues and suggest solutions. " +
	"For alternatives, provide optimized or more readable versions of the code. " +
	"Use proper technical language and include relevant details. " +
	"Always consider the previous parts of the conversation to maintain context and coherence in your responses."

// classifierSystemPrompt constrains the classifier to the five literal
// labels; the caller substring-matches the answer.
const classifierSystemPrompt = "You are an AI function-calling model capable of understanding user prompts related to code, including line numbers, functions, and code blocks. " +
	"Determine whether the user's prompt requires extracting clipboard content, taking a screenshot, inserting code, or performing no action. " +
	`Respond with only one selection from the list: ["extract clipboard", "take screenshot", "insert code", "explain copied code", "None"]. ` +
	"Function call name exactly as listed. " +
	"Consider the context of the conversation and previous interactions to make an informed decision. " +
	"If the user mentions specific line numbers or code blocks, or highlights a piece of code, it is likely they are referring to code on their screen, and you should consider taking a screenshot."

const defaultTypeDelay = 100 * time.Millisecond

// Deps are the controller's collaborators, one per external boundary.
type Deps struct {
	Session    *convo.Session
	Chat       ChatBackend
	Vision     VisionBackend
	Translator Translator
	Detector   LanguageDetector
	Clipboard  Clipboard
	Screen     Screenshotter
	Speaker    Speaker
	Emitter    Emitter

	// TypeDelay is the pause between type_word commands; the default paces
	// the typing effect at ten tokens per second.
	TypeDelay time.Duration
}

// Controller is the response pipeline: one Process call per utterance.
type Controller struct {
	deps      Deps
	typeDelay time.Duration
}

func New(deps Deps) *Controller {
	delay := deps.TypeDelay
	if delay <= 0 {
		delay = defaultTypeDelay
	}
	return &Controller{deps: deps, typeDelay: delay}
}

// Process runs the full pipeline for one utterance. External-service
// failures degrade to user-visible notices; they never escape this call.
func (c *Controller) Process(ctx context.Context, utterance string, origin Origin) {
	if origin == OriginText {
		utterance = strings.ToLower(strings.TrimSpace(utterance))
	}
	if strings.TrimSpace(utterance) == "" {
		log.Info("Empty utterance, nothing to do")
		return
	}

	language := c.deps.Detector.Detect(utterance)

	c.deps.Emitter.Emit(host.InsertOutput("USER: " + utterance))

	it := c.classify(ctx, utterance)
	log.Debug("Classified intent", "intent", it)

	if it == intent.ExplainCopiedCode {
		c.explainCopiedCode(ctx, language)
		return
	}
	c.respond(ctx, utterance, language, it)
}

// classify runs the isolated classifier request. Failures fall open to None
// so the turn continues without a side action.
func (c *Controller) classify(ctx context.Context, utterance string) intent.Intent {
	answer, err := c.deps.Chat.Complete(ctx, []convo.Turn{
		{Role: convo.RoleSystem, Content: classifierSystemPrompt},
		{Role: convo.RoleUser, Content: utterance},
	})
	if err != nil {
		log.Error("Intent classification failed", "err", err)
		return intent.None
	}
	return intent.Parse(answer)
}

// explainCopiedCode explains the clipboard contents and re-types them into
// the editor. An empty clipboard aborts the turn with a notice, before any
// generation call.
func (c *Controller) explainCopiedCode(ctx context.Context, language string) {
	code, err := c.deps.Clipboard.ReadText()
	if err != nil {
		log.Info("Clipboard empty on explain request", "err", err)
		c.notify("No code found in clipboard.")
		return
	}

	reply, err := c.generate(ctx, "Please explain the following code:\n\n"+code)
	if err != nil {
		log.Error("Generation failed", "err", err)
		c.notify("Failed to generate a response.")
		return
	}

	translated := c.translate(ctx, reply, language)
	c.deps.Emitter.Emit(host.InsertOutput("ASSISTANT: " + translated))
	c.deps.Speaker.Speak(codeblock.Strip(translated))

	c.deps.Emitter.Emit(host.ClearEditor())
	c.typeCode(code)
}

// respond handles every non-explain intent: gather side context, generate,
// translate, surface any code block, speak.
func (c *Controller) respond(ctx context.Context, utterance, language string, it intent.Intent) {
	prompt := utterance
	var sideContext []string

	switch it {
	case intent.TakeScreenshot:
		path, err := c.deps.Screen.Capture()
		if err != nil {
			log.Error("Screenshot capture failed", "err", err)
			c.notify("Failed to capture a screenshot.")
			break
		}
		frags, err := c.deps.Vision.Describe(ctx, utterance, path)
		if err != nil {
			log.Error("Vision description failed", "err", err)
			c.notify("Failed to describe the screenshot.")
			break
		}
		sideContext = frags
	case intent.ExtractClipboard:
		if text, err := c.deps.Clipboard.ReadText(); err != nil {
			prompt += "\n\nNo clipboard content found."
		} else {
			prompt += "\n\nCLIPBOARD CONTENT:" + text
		}
	case intent.InsertCode:
		if code, ok := codeblock.ExtractFirst(utterance); ok {
			c.deps.Emitter.Emit(host.ShowInsertCode(code))
		}
	}

	if len(sideContext) > 0 {
		prompt = fmt.Sprintf("USER PROMPT:%s\n\nIMAGE CONTEXT:%s", prompt, strings.Join(sideContext, "\n"))
	}

	reply, err := c.generate(ctx, prompt)
	if err != nil {
		log.Error("Generation failed", "err", err)
		c.notify("Failed to generate a response.")
		return
	}

	translated := c.translate(ctx, reply, language)
	c.deps.Emitter.Emit(host.InsertOutput("ASSISTANT: " + translated))

	if code, ok := codeblock.ExtractFirst(translated); ok {
		if err := c.deps.Clipboard.WriteText(code); err != nil {
			c.deps.Emitter.Emit(host.InsertOutput(fmt.Sprintf("Failed to copy code to clipboard: %v", err)))
		} else {
			c.deps.Emitter.Emit(host.ShowInsertCode(code))
		}
	} else {
		c.deps.Emitter.Emit(host.InsertOutput("No code block detected in the response."))
	}

	c.deps.Speaker.Speak(codeblock.Strip(translated))
}

// generate calls the chat backend with the session history plus prompt and
// records the exchange on success.
func (c *Controller) generate(ctx context.Context, prompt string) (string, error) {
	turns := append(c.deps.Session.Snapshot(), convo.Turn{Role: convo.RoleUser, Content: prompt})
	reply, err := c.deps.Chat.Complete(ctx, turns)
	if err != nil {
		return "", err
	}
	c.deps.Session.AppendExchange(prompt, reply)
	return reply, nil
}

// translate converts reply into the detected language, falling back to the
// untranslated text on failure.
func (c *Controller) translate(ctx context.Context, reply, language string) string {
	out, err := c.deps.Translator.Translate(ctx, reply, language)
	if err != nil {
		log.Error("Translation failed", "target", language, "err", err)
		return reply
	}
	return out
}

// typeCode drives the visible typing effect, one whitespace-delimited token
// per command, paced by the configured delay.
func (c *Controller) typeCode(code string) {
	for _, word := range strings.Fields(code) {
		c.deps.Emitter.Emit(host.TypeWord(word))
		time.Sleep(c.typeDelay)
	}
}

// notify reports a user-visible condition through both output channels.
func (c *Controller) notify(msg string) {
	c.deps.Emitter.Emit(host.InsertOutput(msg))
	c.deps.Speaker.Speak(msg)
}
