// Package ipc exposes the host control protocol on a unix socket, so a
// hotkey daemon can drive the bridge without owning its stdin.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

const DefaultSocketPath = "/tmp/codevox.sock"

// ControlMessage carries one host protocol line, e.g. "startListening".
type ControlMessage struct {
	Line string `json:"line"`
}

// StartServer listens on socketPath and forwards each received message to
// handler on its own goroutine. A stale socket file is replaced.
func StartServer(socketPath string, handler func(ControlMessage)) error {
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage)) {
	defer conn.Close()

	var msg ControlMessage
	dec := json.NewDecoder(conn)
	if err := dec.Decode(&msg); err != nil {
		return
	}
	handler(msg)
}

// SendLine delivers one control line to the daemon at socketPath.
func SendLine(socketPath, line string) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	return enc.Encode(ControlMessage{Line: line})
}
