package prompt

import (
	"errors"
	"testing"
)

func TestNoopPrompter(t *testing.T) {
	var p Prompter = &NoopPrompter{}

	if _, err := p.Input("Email", "", nil); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Input err = %v", err)
	}
	if _, err := p.Select("Role", []string{"a"}, "a"); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Select err = %v", err)
	}
	if _, err := p.Confirm("Sure?", true); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Confirm err = %v", err)
	}
}
