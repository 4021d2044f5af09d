// Package host carries the editor-facing protocol: line-based control
// commands in, framed JSON instructions out.
package host

import (
	"encoding/json"
	"strings"
	"sync"

	log "log/slog"
)

// Action tags understood by the editor extension.
const (
	ActionInsertOutput   = "insertOutput"
	ActionTypeWord       = "type_word"
	ActionClearEditor    = "clear_editor"
	ActionShowInsertCode = "show_insert_code_prompt"
)

// Command is one outbound instruction. Exactly one payload field is set,
// depending on the action.
type Command struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	Word   string `json:"word,omitempty"`
	Code   string `json:"code,omitempty"`
}

// InsertOutput appends value to the extension's output view.
func InsertOutput(value string) Command {
	return Command{Action: ActionInsertOutput, Value: value}
}

// TypeWord types one token into the editor, part of the typing simulation.
func TypeWord(word string) Command {
	return Command{Action: ActionTypeWord, Word: word}
}

// ClearEditor empties the active editor before a typing simulation.
func ClearEditor() Command {
	return Command{Action: ActionClearEditor}
}

// ShowInsertCode raises the extension's insert-code prompt carrying code.
func ShowInsertCode(code string) Command {
	return Command{Action: ActionShowInsertCode, Code: code}
}

// EscapeValue doubles backslashes and escapes double quotes. The extension
// unescapes insertOutput values with UnescapeValue's inverse after parsing
// the JSON frame.
func EscapeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// UnescapeValue reverses EscapeValue.
func UnescapeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Emitter serializes commands onto the host transport, one JSON object per
// message. Writes hold a lock so concurrent pipeline workers interleave only
// at whole-message granularity.
type Emitter struct {
	mu   sync.Mutex
	conn MessageWriter
}

// MessageWriter is the outbound half of a transport.
type MessageWriter interface {
	WriteMessage(data []byte) error
}

func NewEmitter(conn MessageWriter) *Emitter {
	return &Emitter{conn: conn}
}

// Emit frames and writes one command. Serialization or write failures are
// logged and the message dropped; the caller's pipeline continues.
func (e *Emitter) Emit(cmd Command) {
	if cmd.Action == ActionInsertOutput {
		cmd.Value = EscapeValue(cmd.Value)
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		log.Error("Failed to serialize command", "action", cmd.Action, "err", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.conn.WriteMessage(data); err != nil {
		log.Error("Failed to write command", "action", cmd.Action, "err", err)
	}
}
