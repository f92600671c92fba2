package main

import (
	"fmt"
	"os"

	"santral/internal/ipc"
)

func main() {
	cmd := ipc.CmdCagri
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := ipc.SendCommand(cmd); err != nil {
		fmt.Println("santral-daemon not running:", err)
		os.Exit(1)
	}
}
