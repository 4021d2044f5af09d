package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"codevox/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Parse()

	line := "startListening"
	if args := cli.Args(); len(args) > 0 {
		line = strings.Join(args, " ")
	}

	if err := ipc.SendLine(*socket, line); err != nil {
		fmt.Println("codevox-daemon not running:", err)
		os.Exit(1)
	}
}
