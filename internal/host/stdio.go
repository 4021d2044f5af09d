package host

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Stdio is the default transport: the editor extension spawns the daemon and
// talks over its pipes. Stdout carries only protocol frames; diagnostics go
// to the logger on stderr.
type Stdio struct {
	sc *bufio.Scanner
	w  io.Writer
}

func NewStdio(r io.Reader, w io.Writer) *Stdio {
	return &Stdio{sc: bufio.NewScanner(r), w: w}
}

func (s *Stdio) ReadLine() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.sc.Text()), nil
}

// WriteMessage frames one JSON object followed by a blank line.
func (s *Stdio) WriteMessage(data []byte) error {
	_, err := fmt.Fprintf(s.w, "%s\n\n", data)
	return err
}
