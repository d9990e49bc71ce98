// Package runner executes external commands such as the IBM Cloud CLI.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"goa.design/clue/log"
)

// Command describes one process invocation. Env entries are appended to the
// current process environment.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandRunner runs a command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

type ExecRunner struct{}

var _ CommandRunner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	if c.Name == "" {
		return "", errors.New("command name required")
	}
	log.Debug(ctx, log.KV{K: "msg", V: "running command"}, log.KV{K: "command", V: c.String()})
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return string(out), fmt.Errorf("%s: %w", c.Name, ctxErr)
		}
		return string(out), fmt.Errorf("%s: %w", c.Name, err)
	}
	return string(out), nil
}

// FakeResponse is the canned outcome for one FakeRunner call.
type FakeResponse struct {
	Output string
	Err    error
}

// FakeRunner records commands and replays responses in order. Once the
// responses run out every call succeeds with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	Responses []FakeResponse
	Calls     []Command
}

var _ CommandRunner = (*FakeRunner)(nil)

func (f *FakeRunner) Run(_ context.Context, c Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, c)
	if len(f.Responses) == 0 {
		return "", nil
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp.Output, resp.Err
}
