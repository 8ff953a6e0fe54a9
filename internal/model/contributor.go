package model

import "encoding/json"

// Contributor is a registered person who places memories on the map.
// Stored as one JSON file per contributor; field names follow the browser
// client's wire format.
type Contributor struct {
	ID                  string   `json:"id"`
	Email               string   `json:"email"`
	Name                string   `json:"name,omitempty"`
	Role                string   `json:"role,omitempty"`
	Department          string   `json:"department,omitempty"`
	Biography           string   `json:"biography,omitempty"`
	Color               string   `json:"color,omitempty"`
	RegistrationDate    string   `json:"registrationDate,omitempty"`
	MemoriesContributed []string `json:"memoriesContributed"`
	MemoriesReceived    []string `json:"memoriesReceived,omitempty"`

	// Extra holds client-defined fields, serialized at the top level.
	Extra map[string]any `json:"-"`
}

var contributorFields = map[string]bool{
	"id": true, "email": true, "name": true, "role": true,
	"department": true, "biography": true, "color": true,
	"registrationDate": true, "memoriesContributed": true,
	"memoriesReceived": true,
}

// Identity returns the key a color is assigned to: the email, or the ID
// for records that predate email-keyed IDs.
func (c *Contributor) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.ID
}

// MarshalJSON merges Extra into the top level of the JSON object.
func (c Contributor) MarshalJSON() ([]byte, error) {
	type contributorAlias Contributor
	alias := contributorAlias(c)
	if alias.MemoriesContributed == nil {
		alias.MemoriesContributed = []string{}
	}
	return marshalWithExtra(alias, c.Extra)
}

// UnmarshalJSON collects unknown top-level keys into Extra.
func (c *Contributor) UnmarshalJSON(data []byte) error {
	type contributorAlias Contributor
	var alias contributorAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*c = Contributor(alias)

	extra, err := extractExtra(data, contributorFields)
	if err != nil {
		return err
	}
	c.Extra = extra
	return nil
}
