package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/mobapp/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	mode() session.Mode
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Status(ctx context.Context) error
	Logs(ctx context.Context) error
	ExportLogs(ctx context.Context) error
	ClearLogs(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	helpAuth = "Available commands: login, register, forgot, reset, status, logs, exportlogs, clearlogs, exit"
	helpMain = "Available commands: whoami, profile, status, logs, exportlogs, clearlogs, logout, exit"
)

// commandModes lists, for each mode-specific command, the mode it needs.
// Commands not listed here work in every mode.
var commandModes = map[string]session.Mode{
	"login":    session.ModeAuth,
	"register": session.ModeAuth,
	"forgot":   session.ModeAuth,
	"reset":    session.ModeAuth,
	"whoami":   session.ModeMain,
	"profile":  session.ModeMain,
	"logout":   session.ModeMain,
}

// runREPL starts a simple read–eval–print loop for the mobapp CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The command set follows the presentation
// mode: the auth screen offers login, register, forgot and reset; the main
// screen offers whoami, profile and logout. status, logs, exportlogs and
// clearlogs are always available. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mobapp> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		mode := a.mode()
		if mode == session.ModeLoading {
			printlnFn("Please wait...")
			continue
		}
		if need, ok := commandModes[cmd]; ok && need != mode {
			if mode == session.ModeMain {
				printlnFn("Command", cmd, "is not available while signed in")
			} else {
				printlnFn("Command", cmd, "requires login")
			}
			continue
		}

		switch cmd {
		case "help":
			if mode == session.ModeMain {
				printlnFn(helpMain)
			} else {
				printlnFn(helpAuth)
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "status":
			_ = a.Status(ctx)

		case "logs":
			_ = a.Logs(ctx)

		case "exportlogs":
			_ = a.ExportLogs(ctx)

		case "clearlogs":
			_ = a.ClearLogs(ctx)

		case "logout":
			_ = a.Logout(ctx)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
