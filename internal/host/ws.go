package host

import (
	"net/url"
	"strings"

	log "log/slog"

	"github.com/gorilla/websocket"
)

// WS adapts a websocket hub connection to the host transport: one control
// line per inbound text message, one command frame per outbound message.
type WS struct {
	conn *websocket.Conn
}

// DialWS connects to the hub at wsURL.
func DialWS(wsURL string) (*WS, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	log.Info("Connected to host hub", "url", wsURL)
	return &WS{conn: conn}, nil
}

func (w *WS) ReadLine() (string, error) {
	_, msg, err := w.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(msg)), nil
}

func (w *WS) WriteMessage(data []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WS) Close() error {
	return w.conn.Close()
}
