package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codevox/internal/convo"
	"codevox/internal/host"
)

// stubChat answers the first call (the classifier) with label, every later
// call with reply.
type stubChat struct {
	label   string
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubChat) Complete(_ context.Context, turns []convo.Turn) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, turns[len(turns)-1].Content)
	if s.err != nil {
		return "", s.err
	}
	if s.calls == 1 {
		return s.label, nil
	}
	return s.reply, nil
}

type stubVision struct {
	fragments []string
	err       error
	calls     int
}

func (s *stubVision) Describe(_ context.Context, _, _ string) ([]string, error) {
	s.calls++
	return s.fragments, s.err
}

// identityTranslator marks translated text so tests can tell it passed
// through.
type identityTranslator struct{ err error }

func (t identityTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return text, nil
}

type fixedDetector struct{ code string }

func (d fixedDetector) Detect(string) string { return d.code }

type stubClipboard struct {
	text     string
	readErr  error
	writeErr error
	written  []string
}

func (s *stubClipboard) ReadText() (string, error) {
	if s.readErr != nil {
		return "", s.readErr
	}
	return s.text, nil
}

func (s *stubClipboard) WriteText(text string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written = append(s.written, text)
	return nil
}

type stubScreen struct {
	path  string
	err   error
	calls int
}

func (s *stubScreen) Capture() (string, error) {
	s.calls++
	return s.path, s.err
}

type stubSpeaker struct{ spoken []string }

func (s *stubSpeaker) Speak(text string) { s.spoken = append(s.spoken, text) }

type captureEmitter struct{ commands []host.Command }

func (e *captureEmitter) Emit(cmd host.Command) { e.commands = append(e.commands, cmd) }

func (e *captureEmitter) actions() []string {
	out := make([]string, len(e.commands))
	for i, c := range e.commands {
		out[i] = c.Action
	}
	return out
}

type fixture struct {
	chat      *stubChat
	vision    *stubVision
	clipboard *stubClipboard
	screen    *stubScreen
	speaker   *stubSpeaker
	emitter   *captureEmitter
	session   *convo.Session
	ctl       *Controller
}

func newFixture(chat *stubChat) *fixture {
	f := &fixture{
		chat:      chat,
		vision:    &stubVision{fragments: []string{"code on screen"}},
		clipboard: &stubClipboard{},
		screen:    &stubScreen{path: "/tmp/shot.jpg"},
		speaker:   &stubSpeaker{},
		emitter:   &captureEmitter{},
		session:   convo.NewSession(AssistantSystemPrompt),
	}
	f.ctl = New(Deps{
		Session:    f.session,
		Chat:       f.chat,
		Vision:     f.vision,
		Translator: identityTranslator{},
		Detector:   fixedDetector{code: "en"},
		Clipboard:  f.clipboard,
		Screen:     f.screen,
		Speaker:    f.speaker,
		Emitter:    f.emitter,
		TypeDelay:  time.Microsecond,
	})
	return f
}

func TestEmptyUtteranceDoesNothing(t *testing.T) {
	f := newFixture(&stubChat{label: "None"})

	f.ctl.Process(context.Background(), "   \t ", OriginText)

	assert.Empty(t, f.emitter.commands)
	assert.Empty(t, f.speaker.spoken)
	assert.Zero(t, f.chat.calls)
}

func TestTextOriginIsNormalized(t *testing.T) {
	f := newFixture(&stubChat{label: "None", reply: "sure"})

	f.ctl.Process(context.Background(), "  Explain THIS  ", OriginText)

	require.NotEmpty(t, f.emitter.commands)
	assert.Equal(t, host.EscapeValue("USER: explain this"), f.emitter.commands[0].Value)
}

func TestVoiceOriginKeptAsTranscribed(t *testing.T) {
	f := newFixture(&stubChat{label: "None", reply: "sure"})

	f.ctl.Process(context.Background(), "Explain This", OriginVoice)

	require.NotEmpty(t, f.emitter.commands)
	assert.Equal(t, host.EscapeValue("USER: Explain This"), f.emitter.commands[0].Value)
}

func TestExplainCopiedCodeEmptyClipboard(t *testing.T) {
	f := newFixture(&stubChat{label: "explain copied code"})
	f.clipboard.readErr = errors.New("clipboard has no text content")

	f.ctl.Process(context.Background(), "explain the copied code", OriginText)

	// exactly one notice beyond the user echo, spoken once, and no
	// generation call (the single chat call is the classifier)
	require.Len(t, f.emitter.commands, 2)
	assert.Equal(t, host.EscapeValue("No code found in clipboard."), f.emitter.commands[1].Value)
	assert.Equal(t, []string{"No code found in clipboard."}, f.speaker.spoken)
	assert.Equal(t, 1, f.chat.calls)
	assert.Equal(t, 1, f.session.Len())
}

func TestExplainCopiedCodeTypesOriginalCode(t *testing.T) {
	f := newFixture(&stubChat{label: "explain copied code", reply: "It prints twice."})
	f.clipboard.text = "print(1)\nprint(2)"

	f.ctl.Process(context.Background(), "explain copied code please", OriginText)

	assert.Equal(t, []string{
		host.ActionInsertOutput, // USER echo
		host.ActionInsertOutput, // ASSISTANT reply
		host.ActionClearEditor,
		host.ActionTypeWord,
		host.ActionTypeWord,
	}, f.emitter.actions())

	// tokens come from the copied code, not the model reply
	assert.Equal(t, "print(1)", f.emitter.commands[3].Word)
	assert.Equal(t, "print(2)", f.emitter.commands[4].Word)

	// the explanation prompt wraps the copied code and is recorded
	assert.Equal(t, 3, f.session.Len())
	assert.Contains(t, f.chat.prompts[1], "Please explain the following code:")
	assert.Contains(t, f.chat.prompts[1], "print(1)")

	assert.Equal(t, []string{"It prints twice."}, f.speaker.spoken)
}

func TestNoneIntentWithCodeReply(t *testing.T) {
	reply := "Use this:\n```\nx := 42\n```\nDone."
	f := newFixture(&stubChat{label: "None", reply: reply})

	f.ctl.Process(context.Background(), "give me a snippet", OriginText)

	// two history entries beyond the system turn
	assert.Equal(t, 3, f.session.Len())

	// the block from the translated reply is copied and offered for insert
	require.Equal(t, []string{"x := 42"}, f.clipboard.written)
	assert.Equal(t, []string{
		host.ActionInsertOutput,
		host.ActionInsertOutput,
		host.ActionShowInsertCode,
	}, f.emitter.actions())
	assert.Equal(t, "x := 42", f.emitter.commands[2].Code)
	assert.Equal(t, host.EscapeValue("ASSISTANT: "+reply), f.emitter.commands[1].Value)

	// spoken text is code-stripped
	require.Len(t, f.speaker.spoken, 1)
	assert.NotContains(t, f.speaker.spoken[0], "x := 42")
	assert.NotContains(t, f.speaker.spoken[0], "```")
}

func TestNoneIntentWithoutCodeReply(t *testing.T) {
	f := newFixture(&stubChat{label: "None", reply: "Just words."})

	f.ctl.Process(context.Background(), "chat with me", OriginText)

	assert.Empty(t, f.clipboard.written)
	last := f.emitter.commands[len(f.emitter.commands)-1]
	assert.Equal(t, host.EscapeValue("No code block detected in the response."), last.Value)
}

func TestClipboardWriteFailureEmitsNotice(t *testing.T) {
	f := newFixture(&stubChat{label: "None", reply: "```\ncode\n```"})
	f.clipboard.writeErr = errors.New("denied")

	f.ctl.Process(context.Background(), "snippet", OriginText)

	var values []string
	for _, c := range f.emitter.commands {
		values = append(values, host.UnescapeValue(c.Value))
	}
	assert.Contains(t, strings.Join(values, "\n"), "Failed to copy code to clipboard")
	for _, c := range f.emitter.commands {
		assert.NotEqual(t, host.ActionShowInsertCode, c.Action)
	}
}

func TestTakeScreenshotGathersVisionContext(t *testing.T) {
	f := newFixture(&stubChat{label: "take screenshot", reply: "The bug is on line 3."})

	f.ctl.Process(context.Background(), "what is wrong on line 3", OriginText)

	assert.Equal(t, 1, f.screen.calls)
	assert.Equal(t, 1, f.vision.calls)

	require.Len(t, f.chat.prompts, 2)
	gen := f.chat.prompts[1]
	assert.Contains(t, gen, "USER PROMPT:what is wrong on line 3")
	assert.Contains(t, gen, "IMAGE CONTEXT:code on screen")
}

func TestScreenshotFailureDegradesToPlainPrompt(t *testing.T) {
	f := newFixture(&stubChat{label: "take screenshot", reply: "ok"})
	f.screen.err = errors.New("no display")

	f.ctl.Process(context.Background(), "look at my screen", OriginText)

	assert.Zero(t, f.vision.calls)
	require.Len(t, f.chat.prompts, 2)
	assert.Equal(t, "look at my screen", f.chat.prompts[1])
}

func TestVisionFailureDegradesToPlainPrompt(t *testing.T) {
	f := newFixture(&stubChat{label: "take screenshot", reply: "ok"})
	f.vision.err = errors.New("api down")

	f.ctl.Process(context.Background(), "look at my screen", OriginText)

	require.Len(t, f.chat.prompts, 2)
	assert.Equal(t, "look at my screen", f.chat.prompts[1])
}

func TestExtractClipboardAugmentsPrompt(t *testing.T) {
	f := newFixture(&stubChat{label: "extract clipboard", reply: "ok"})
	f.clipboard.text = "SELECT 1;"

	f.ctl.Process(context.Background(), "what does this query do", OriginText)

	require.Len(t, f.chat.prompts, 2)
	assert.Equal(t, "what does this query do\n\nCLIPBOARD CONTENT:SELECT 1;", f.chat.prompts[1])
}

func TestExtractClipboardEmptyAppendsMarker(t *testing.T) {
	f := newFixture(&stubChat{label: "extract clipboard", reply: "ok"})
	f.clipboard.readErr = errors.New("empty")

	f.ctl.Process(context.Background(), "what is on my clipboard", OriginText)

	require.Len(t, f.chat.prompts, 2)
	assert.Equal(t, "what is on my clipboard\n\nNo clipboard content found.", f.chat.prompts[1])
}

func TestInsertCodePromptsWithUtteranceBlock(t *testing.T) {
	f := newFixture(&stubChat{label: "insert code", reply: "Inserted."})

	f.ctl.Process(context.Background(), "insert code ```\nfmt.println(1)\n```", OriginText)

	require.GreaterOrEqual(t, len(f.emitter.commands), 2)
	assert.Equal(t, host.ActionShowInsertCode, f.emitter.commands[1].Action)
	assert.Equal(t, "fmt.println(1)", f.emitter.commands[1].Code)
}

func TestClassifierFailureFallsOpenToNone(t *testing.T) {
	chat := &stubChat{err: errors.New("backend down")}
	f := newFixture(chat)

	f.ctl.Process(context.Background(), "hello", OriginText)

	// classify failed, then generation failed too; the pipeline still
	// reaches the generation branch and reports the failure
	assert.Equal(t, 2, chat.calls)
	last := f.emitter.commands[len(f.emitter.commands)-1]
	assert.Equal(t, host.EscapeValue("Failed to generate a response."), last.Value)
	assert.Equal(t, 1, f.session.Len())
}

func TestTranslationFailureFallsBackToReply(t *testing.T) {
	f := newFixture(&stubChat{label: "None", reply: "untranslated"})
	f.ctl.deps.Translator = identityTranslator{err: errors.New("quota")}

	f.ctl.Process(context.Background(), "hi", OriginText)

	assert.Equal(t, host.EscapeValue("ASSISTANT: untranslated"), f.emitter.commands[1].Value)
}
