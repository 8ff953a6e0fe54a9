package cli

import (
	"encoding/json"
	"fmt"

	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/service"
)

// InitOutput describes an init run for JSON output.
type InitOutput struct {
	DataDir       string `json:"data_dir"`
	ConfigPath    string `json:"config_path"`
	ConfigCreated bool   `json:"config_created"`
}

// NewInitOutput creates an InitOutput from an init result.
func NewInitOutput(r *service.InitResult) InitOutput {
	return InitOutput{
		DataDir:       r.DataDir,
		ConfigPath:    r.ConfigPath,
		ConfigCreated: r.ConfigCreated,
	}
}

// ContributorOutput wraps a single contributor for JSON output.
type ContributorOutput struct {
	Contributor *model.Contributor `json:"contributor"`
}

// NewContributorOutput creates a ContributorOutput.
func NewContributorOutput(c *model.Contributor) ContributorOutput {
	return ContributorOutput{Contributor: c}
}

// ColorOutput is the color of one identity.
type ColorOutput struct {
	Identity string `json:"identity"`
	Color    string `json:"color"`
	Assigned bool   `json:"assigned"`
}

// ColorsOutput is the full assignment table.
type ColorsOutput struct {
	Palette      []string          `json:"palette"`
	DefaultColor string            `json:"default_color"`
	Assignments  map[string]string `json:"assignments"`
	Cursor       int               `json:"next_color_index"`
}

// NewColorsOutput creates a ColorsOutput from an engine snapshot.
// Always returns an empty object (not null) when nothing is assigned.
func NewColorsOutput(palette []string, defaultColor string, state model.ColorState) ColorsOutput {
	assignments := state.Assignments
	if assignments == nil {
		assignments = map[string]string{}
	}
	return ColorsOutput{
		Palette:      palette,
		DefaultColor: defaultColor,
		Assignments:  assignments,
		Cursor:       state.Cursor,
	}
}

// MembersOutput wraps a list of members for JSON output.
type MembersOutput struct {
	Members []model.Member `json:"members"`
}

// NewMembersOutput creates a MembersOutput.
// Always returns an empty array (not null) when there are no members.
func NewMembersOutput(members []model.Member) MembersOutput {
	if members == nil {
		members = []model.Member{}
	}
	return MembersOutput{Members: members}
}

// MemoriesOutput wraps a list of memories for JSON output.
type MemoriesOutput struct {
	Memories []*model.Memory `json:"memories"`
}

// NewMemoriesOutput creates a MemoriesOutput.
// Always returns an empty array (not null) when there are no memories.
func NewMemoriesOutput(memories []*model.Memory) MemoriesOutput {
	if memories == nil {
		memories = []*model.Memory{}
	}
	return MemoriesOutput{Memories: memories}
}

// RefreshOutput reports how many contributors a refresh rewrote.
type RefreshOutput struct {
	Updated int `json:"updated"`
}

// printJson marshals the value as indented JSON and prints it to stdout.
func printJson(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
