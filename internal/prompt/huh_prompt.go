package prompt

import (
	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter using the charmbracelet/huh library.
type HuhPrompter struct{}

var _ Prompter = (*HuhPrompter)(nil)

// NewHuhPrompter creates a new huh-based prompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

func (p *HuhPrompter) Input(title, defaultValue string, validate func(string) error) (string, error) {
	result := defaultValue

	input := huh.NewInput().
		Title(title).
		Value(&result)
	if validate != nil {
		input = input.Validate(validate)
	}

	err := input.Run()
	return result, err
}

func (p *HuhPrompter) Select(title string, options []string, defaultValue string) (string, error) {
	result := defaultValue

	opts := make([]huh.Option[string], len(options))
	for i, opt := range options {
		opts[i] = huh.NewOption(opt, opt).Selected(opt == defaultValue)
	}

	err := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&result).
		Run()

	return result, err
}

func (p *HuhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	result := defaultValue

	err := huh.NewConfirm().
		Title(title).
		Value(&result).
		Run()

	return result, err
}
