package model

// ColorState is the persisted form of the color assignment engine:
// identity -> color, plus the round-robin cursor.
type ColorState struct {
	Assignments map[string]string `json:"contributor_colors"`
	Cursor      int               `json:"next_color_index"`

	// HasCursor is false when the cursor record was absent on load.
	HasCursor bool `json:"-"`
}

// Clone returns a deep copy of the state.
func (s ColorState) Clone() ColorState {
	out := ColorState{
		Assignments: make(map[string]string, len(s.Assignments)),
		Cursor:      s.Cursor,
		HasCursor:   s.HasCursor,
	}
	for k, v := range s.Assignments {
		out.Assignments[k] = v
	}
	return out
}
