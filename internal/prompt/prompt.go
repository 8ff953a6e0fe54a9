package prompt

import "errors"

// ErrNonInteractive is returned when prompting in non-interactive mode.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter defines the interface for interactive user prompts.
type Prompter interface {
	// Input prompts for text. validate may be nil; when set, the prompt
	// repeats until it returns nil.
	Input(title, defaultValue string, validate func(string) error) (string, error)

	// Select presents options and returns the chosen one.
	Select(title string, options []string, defaultValue string) (string, error)

	// Confirm prompts for yes/no.
	Confirm(title string, defaultValue bool) (bool, error)
}

// NoopPrompter returns errors for all prompts (non-interactive mode).
type NoopPrompter struct{}

var _ Prompter = (*NoopPrompter)(nil)

func (p *NoopPrompter) Input(string, string, func(string) error) (string, error) {
	return "", ErrNonInteractive
}

func (p *NoopPrompter) Select(string, []string, string) (string, error) {
	return "", ErrNonInteractive
}

func (p *NoopPrompter) Confirm(string, bool) (bool, error) {
	return false, ErrNonInteractive
}
