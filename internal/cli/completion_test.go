package cli

import "testing"

func TestConfigFromArgs_LongFlagEquals(t *testing.T) {
	args := []string{"memmap", "colors", "--config=memmap.toml", "check"}
	if got := configFromArgs(args); got != "memmap.toml" {
		t.Errorf("Expected 'memmap.toml', got %q", got)
	}
}

func TestConfigFromArgs_ShortFlagEquals(t *testing.T) {
	args := []string{"memmap", "colors", "-c=alt.toml", "check"}
	if got := configFromArgs(args); got != "alt.toml" {
		t.Errorf("Expected 'alt.toml', got %q", got)
	}
}

func TestConfigFromArgs_LongFlagSpace(t *testing.T) {
	args := []string{"memmap", "colors", "--config", "memmap.toml", "check"}
	if got := configFromArgs(args); got != "memmap.toml" {
		t.Errorf("Expected 'memmap.toml', got %q", got)
	}
}

func TestConfigFromArgs_ShortFlagSpace(t *testing.T) {
	args := []string{"memmap", "colors", "-c", "alt.toml", "check"}
	if got := configFromArgs(args); got != "alt.toml" {
		t.Errorf("Expected 'alt.toml', got %q", got)
	}
}

func TestConfigFromArgs_NoFlag(t *testing.T) {
	args := []string{"memmap", "colors", "check"}
	if got := configFromArgs(args); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestConfigFromArgs_EmptyArgs(t *testing.T) {
	if got := configFromArgs(nil); got != "" {
		t.Errorf("Expected empty string for nil args, got %q", got)
	}
	if got := configFromArgs([]string{}); got != "" {
		t.Errorf("Expected empty string for empty args, got %q", got)
	}
}

func TestConfigFromArgs_EmptyEqualsValue(t *testing.T) {
	// --config= with no value should fall through (not return "")
	args := []string{"memmap", "colors", "--config=", "check"}
	if got := configFromArgs(args); got != "" {
		t.Errorf("Expected empty string for --config= (no value), got %q", got)
	}

	args = []string{"memmap", "colors", "-c=", "check"}
	if got := configFromArgs(args); got != "" {
		t.Errorf("Expected empty string for -c= (no value), got %q", got)
	}
}

func TestConfigFromArgs_FlagAtEnd(t *testing.T) {
	// --config at end with no following value
	args := []string{"memmap", "colors", "--config"}
	if got := configFromArgs(args); got != "" {
		t.Errorf("Expected empty string for --config at end, got %q", got)
	}

	args = []string{"memmap", "colors", "-c"}
	if got := configFromArgs(args); got != "" {
		t.Errorf("Expected empty string for -c at end, got %q", got)
	}
}

func TestConfigFromArgs_FlagAfterPositional(t *testing.T) {
	// Config flag after positional arg (still found)
	args := []string{"memmap", "colors", "check", "-c", "memmap.toml"}
	if got := configFromArgs(args); got != "memmap.toml" {
		t.Errorf("Expected 'memmap.toml', got %q", got)
	}
}

func TestConfigFromArgs_FirstFlagWins(t *testing.T) {
	// Multiple config flags - first one wins
	args := []string{"memmap", "colors", "-c", "first.toml", "-c", "second.toml"}
	if got := configFromArgs(args); got != "first.toml" {
		t.Errorf("Expected 'first.toml' (first flag wins), got %q", got)
	}
}

func TestCompleteRoles(t *testing.T) {
	got, _ := completeRoles("grad")
	if len(got) != 1 || got[0] != "graduated_member" {
		t.Errorf("Expected [graduated_member], got %v", got)
	}

	got, _ = completeRoles("")
	if len(got) != 2 {
		t.Errorf("Expected both roles, got %v", got)
	}
}
