package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/euronode/euronode/internal/client/screens"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Iterations(ctx context.Context) error
	StartIteration(ctx context.Context) error
	Running(ctx context.Context) error
	History(ctx context.Context) error
	Pull(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) error
	AssignPrompt(ctx context.Context) error
	Assignments(ctx context.Context) error
	AssignUI(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (d)ashboard, (i)terations, start, running, history, pull <id>, " +
		"search <query>, assign, assignments, assign-ui, whoami, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the euronode CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done or
// when the user types "exit" or "quit".
//
// A command that needs a session while none is stored sends the user to the
// login prompt, and so does logout. Other errors are printed to w unless
// the user has already been notified about them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	p := printer{w: w}
	for ctx.Err() == nil {
		p.println(fmt.Sprintf("euronode %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			p.println("Bye!")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn(ctx) {
				p.println(helpLoggedIn)
			} else {
				p.println(helpLoggedOut)
			}
			continue
		}

		err = dispatch(ctx, a, cmd, args)
		switch {
		case errors.Is(err, errUnknownCommand):
			p.println("Unknown command:", cmd)
		case errors.Is(err, errUsage):
			p.println(err.Error())
		case errors.Is(err, screens.ErrLoginRequired):
			p.println(describe(err))
			p.report(a.Login(ctx))
		case err != nil:
			p.report(err)
		case cmd == "logout":
			p.report(a.Login(ctx))
		}
	}
}

var (
	errUnknownCommand = errors.New("unknown command")
	errUsage          = errors.New("usage")
)

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "d", "dashboard":
		return a.Dashboard(ctx)
	case "i", "iterations":
		return a.Iterations(ctx)
	case "start":
		return a.StartIteration(ctx)
	case "running":
		return a.Running(ctx)
	case "history":
		return a.History(ctx)
	case "pull":
		if len(args) != 1 {
			return fmt.Errorf("%w: pull <id>", errUsage)
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: pull <id>", errUsage)
		}
		return a.Pull(ctx, id)
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("%w: search <query>", errUsage)
		}
		return a.Search(ctx, strings.Join(args, " "))
	case "assign":
		return a.AssignPrompt(ctx)
	case "assignments":
		return a.Assignments(ctx)
	case "assign-ui":
		return a.AssignUI(ctx)
	}
	return errUnknownCommand
}

// printer writes REPL output to the App's output stream.
type printer struct{ w io.Writer }

func (p printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

func (p printer) report(err error) {
	if msg := describe(err); msg != "" {
		p.println("Error:", msg)
	}
}
