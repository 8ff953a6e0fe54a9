package model

// Member roles.
const (
	RoleGraduated = "graduated_member"
	RoleCurrent   = "current_member"
)

// Member is a target person memories are left for. Members are declared
// in the config file.
type Member struct {
	ID             string `toml:"id" json:"id"`
	Name           string `toml:"name" json:"name"`
	Email          string `toml:"email,omitempty" json:"email,omitempty"`
	Role           string `toml:"role,omitempty" json:"role,omitempty"`
	IsActive       bool   `toml:"is_active" json:"isActive"`
	GraduationDate string `toml:"graduation_date,omitempty" json:"graduationDate,omitempty"`
	Department     string `toml:"department,omitempty" json:"department,omitempty"`
	Biography      string `toml:"biography,omitempty" json:"biography,omitempty"`
}
