package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ada Lovelace", "ada-lovelace"},
		{"Grace  Hopper", "grace-hopper"},
		{"  Linus Torvalds ", "linus-torvalds"},
		{"Mary-Jane O'Neil", "mary-jane-o-neil"},
		{"Dr. Chen (2024)", "dr-chen-2024"},

		// Accents fold to ASCII
		{"José Núñez", "jose-nunez"},
		{"Zoë Brontë", "zoe-bronte"},
		{"François", "francois"},

		// Nothing usable
		{"", ""},
		{"   ", ""},
		{"---", ""},
		{"李", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
