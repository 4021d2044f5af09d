package host

import (
	"strings"

	log "log/slog"
)

// Control lines accepted from the editor extension.
const (
	lineStartListening = "startListening"
	lineStopSpeaking   = "stopSpeaking"
	textPrefix         = "processTextInput:"
)

// Handler receives dispatched control commands. StartListening and
// ProcessText must not block the caller; the loop keeps reading while
// utterances are in flight.
type Handler interface {
	StartListening()
	ProcessText(text string)
	StopSpeaking()
}

// Transport carries control lines in and framed command messages out.
type Transport interface {
	ReadLine() (string, error)
	MessageWriter
}

// Run reads control lines until the transport fails or closes. Worker
// outcomes never propagate back here; the loop only stops with its channel.
func Run(t Transport, h Handler) error {
	for {
		line, err := t.ReadLine()
		if err != nil {
			return err
		}
		Dispatch(line, h)
	}
}

// Dispatch routes one control line. Unknown lines are logged and dropped.
func Dispatch(line string, h Handler) {
	switch {
	case line == lineStartListening:
		h.StartListening()
	case strings.HasPrefix(line, textPrefix):
		h.ProcessText(strings.TrimPrefix(line, textPrefix))
	case line == lineStopSpeaking:
		h.StopSpeaking()
	case line == "":
	default:
		log.Warn("Unknown host command", "line", line)
	}
}
