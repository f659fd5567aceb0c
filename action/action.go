// Package action opens a selected folder in an external program.
package action

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/montrey/fastfolder/config"
)

// Kind names one way of opening a folder.
type Kind string

const (
	Explorer Kind = "explorer"
	Terminal Kind = "terminal"
	Editor   Kind = "editor"
	Copy     Kind = "copy"
)

// SettingKey is the settings key holding the default Kind.
const SettingKey = "default_action"

// Kinds lists every action in the order tab cycles through them.
var Kinds = []Kind{Explorer, Terminal, Editor, Copy}

// ParseKind validates s, falling back to Explorer.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k, true
		}
	}
	return Explorer, false
}

// Cycle returns the kind step positions away from k, wrapping around.
func Cycle(k Kind, step int) Kind {
	idx := 0
	for i, c := range Kinds {
		if c == k {
			idx = i
			break
		}
	}
	n := len(Kinds)
	return Kinds[((idx+step)%n+n)%n]
}

// Starter launches a shell command without waiting for it.
type Starter func(command string) error

// Opener runs the configured command templates.
type Opener struct {
	templates map[Kind]string
	start     Starter
	copy      func(string) error
}

// NewOpener creates an opener for the given templates.
func NewOpener(actions config.Actions) *Opener {
	return &Opener{
		templates: map[Kind]string{
			Explorer: actions.Explorer,
			Terminal: actions.Terminal,
			Editor:   actions.Editor,
		},
		start: startShell,
		copy:  clipboard.WriteAll,
	}
}

// WithStarter replaces the command launcher.
func (o *Opener) WithStarter(start Starter) *Opener {
	o.start = start
	return o
}

// WithClipboard replaces the clipboard writer.
func (o *Opener) WithClipboard(write func(string) error) *Opener {
	o.copy = write
	return o
}

// Command renders the shell command for kind and path.
func (o *Opener) Command(kind Kind, path string) (string, error) {
	tmpl, ok := o.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown action %q", kind)
	}
	if strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("no command configured for %s", kind)
	}
	return strings.ReplaceAll(tmpl, "{path}", path), nil
}

// Open performs kind on path.
func (o *Opener) Open(kind Kind, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if kind == Copy {
		if err := o.copy(path); err != nil {
			return fmt.Errorf("failed to copy path: %w", err)
		}
		return nil
	}

	cmd, err := o.Command(kind, path)
	if err != nil {
		return err
	}
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("failed to run %s action: %w", kind, err)
	}
	return nil
}

// Describe returns a short confirmation for a completed action.
func Describe(kind Kind, path string) string {
	name := filepath.Base(path)
	switch kind {
	case Terminal:
		return "Opened terminal in " + name
	case Editor:
		return "Opened " + name + " in editor"
	case Copy:
		return "Copied " + path
	default:
		return "Opened " + name
	}
}

func startShell(command string) error {
	return exec.Command("bash", "-lc", command).Start()
}
