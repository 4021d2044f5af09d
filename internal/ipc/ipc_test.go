package ipc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLineReachesHandler(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "ctl.sock")

	got := make(chan ControlMessage, 1)
	require.NoError(t, StartServer(socket, func(msg ControlMessage) {
		got <- msg
	}))

	require.NoError(t, SendLine(socket, "stopSpeaking"))

	select {
	case msg := <-got:
		assert.Equal(t, "stopSpeaking", msg.Line)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestSendLineWithoutDaemon(t *testing.T) {
	err := SendLine(filepath.Join(t.TempDir(), "absent.sock"), "startListening")
	assert.Error(t, err)
}
