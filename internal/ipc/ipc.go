// Package ipc is the local control channel of the daemon: a unix socket
// accepting one-shot JSON commands from santral-ctl.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

const SocketPath = "/tmp/santral.sock"

// Commands understood by the daemon.
const (
	CmdCagri  = "cagri"  // start taking a call
	CmdDurdur = "durdur" // hang up the active call
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

func StartServer(handler func(ControlMessage)) error {
	os.Remove(SocketPath)

	ln, err := net.Listen("unix", SocketPath)
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
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	handler(msg)
}

func SendCommand(cmd string) error {
	conn, err := net.Dial("unix", SocketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	return json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd})
}
