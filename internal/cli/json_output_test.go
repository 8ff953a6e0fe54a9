package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/amterp/memmap/internal/model"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return string(data)
}

func TestNewMembersOutput_EmptyIsArray(t *testing.T) {
	got := marshal(t, NewMembersOutput(nil))
	if got != `{"members":[]}` {
		t.Errorf("Expected empty array, got %s", got)
	}
}

func TestNewMemoriesOutput_EmptyIsArray(t *testing.T) {
	got := marshal(t, NewMemoriesOutput(nil))
	if got != `{"memories":[]}` {
		t.Errorf("Expected empty array, got %s", got)
	}
}

func TestNewColorsOutput(t *testing.T) {
	out := NewColorsOutput([]string{"#ff0000"}, "#666666", model.ColorState{})
	got := marshal(t, out)

	if !strings.Contains(got, `"assignments":{}`) {
		t.Errorf("Expected empty assignments object, got %s", got)
	}
	if !strings.Contains(got, `"next_color_index":0`) {
		t.Errorf("Expected next_color_index, got %s", got)
	}

	out = NewColorsOutput([]string{"#ff0000"}, "#666666", model.ColorState{
		Assignments: map[string]string{"ada@example.com": "#ff0000"},
		Cursor:      1,
	})
	got = marshal(t, out)
	if !strings.Contains(got, `"ada@example.com":"#ff0000"`) {
		t.Errorf("Expected assignment in output, got %s", got)
	}
	if !strings.Contains(got, `"next_color_index":1`) {
		t.Errorf("Expected cursor 1, got %s", got)
	}
}

func TestContributorOutput_KeepsExtraFields(t *testing.T) {
	c := &model.Contributor{
		ID:    "ada@example.com",
		Email: "ada@example.com",
		Color: "#ff0000",
		Extra: map[string]any{"nickname": "ada"},
	}
	got := marshal(t, NewContributorOutput(c))

	for _, want := range []string{`"contributor":{`, `"color":"#ff0000"`, `"nickname":"ada"`, `"memoriesContributed":[]`} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %s in output, got %s", want, got)
		}
	}
}

func TestMemberDetail(t *testing.T) {
	tests := []struct {
		member model.Member
		want   string
	}{
		{model.Member{Role: model.RoleCurrent, IsActive: true}, "(current_member)"},
		{model.Member{Role: model.RoleGraduated, GraduationDate: "2024-06", IsActive: true}, "(graduated_member, graduated 2024-06)"},
		{model.Member{IsActive: true}, ""},
	}
	for _, tt := range tests {
		if got := memberDetail(tt.member); got != tt.want {
			t.Errorf("memberDetail(%+v) = %q, want %q", tt.member, got, tt.want)
		}
	}
}
