package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/beaux-riel/openengram-site/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Keys(ctx context.Context) error
	Reveal(ctx context.Context, id string) error
	Copy(ctx context.Context, id string) error
	Regenerate(ctx context.Context) error
	Disarm()
	Billing(ctx context.Context) error
	Upgrade(ctx context.Context, plan string) error
	Portal(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, billing, upgrade <plan>, exit"
	helpLoggedIn  = "Available commands: dashboard, keys, reveal <id>, copy <id>, regen, billing, upgrade <plan>, portal, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account
//	  - login            authenticate
//	  - billing          list plans
//	  - upgrade <plan>   log in, then start checkout
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - dashboard        account usage and quick start
//	  - keys             list API keys, masked
//	  - reveal <id>      toggle showing one key in full
//	  - copy <id>        copy one key to the clipboard
//	  - regen            regenerate the API key (run twice to confirm)
//	  - billing          plans with the current one highlighted
//	  - upgrade <plan>   start checkout
//	  - portal           manage the subscription
//	  - logout
//
// Every command except regen disarms a pending regenerate confirmation.
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("engram (%s) > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd != "regen" {
			a.Disarm()
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "dashboard", "d":
			cmdErr = a.Dashboard(ctx)

		case "keys", "k":
			cmdErr = a.Keys(ctx)

		case "reveal", "copy", "upgrade":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <%s>", cmd, argName(cmd)))
				continue
			}
			switch cmd {
			case "reveal":
				cmdErr = a.Reveal(ctx, args[0])
			case "copy":
				cmdErr = a.Copy(ctx, args[0])
			default:
				cmdErr = a.Upgrade(ctx, args[0])
			}

		case "regen":
			cmdErr = a.Regenerate(ctx)

		case "billing", "b":
			cmdErr = a.Billing(ctx)

		case "portal":
			cmdErr = a.Portal(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(errorStyle.Render("Error: " + client.Display(cmdErr)))
		}
	}
}

func argName(cmd string) string {
	if cmd == "upgrade" {
		return "plan"
	}
	return "id"
}
