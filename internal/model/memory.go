package model

import "encoding/json"

// DefaultMemoryType is used when a memory is created without a type.
const DefaultMemoryType = "location_memory"

// Memory is a geo-located note left by a contributor for a target member.
type Memory struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title,omitempty"`
	Description             string    `json:"description,omitempty"`
	TargetUserID            string    `json:"targetUserId"`
	ContributorName         string    `json:"contributorName,omitempty"`
	ContributorEmail        string    `json:"contributorEmail,omitempty"`
	RegisteredContributorID string    `json:"registeredContributorId,omitempty"`
	ContributorColor        string    `json:"contributorColor,omitempty"`
	Coordinates             []float64 `json:"coordinates,omitempty"` // [lng, lat]
	Timestamp               string    `json:"timestamp,omitempty"`
	Type                    string    `json:"type,omitempty"`
	Media                   Media     `json:"media"`
	Tags                    []string  `json:"tags,omitempty"`
	IsPublic                bool      `json:"isPublic"`

	// Extra holds client-defined fields, serialized at the top level.
	Extra map[string]any `json:"-"`
}

// Media lists the uploaded attachments of a memory by server path.
type Media struct {
	Images       []string `json:"images"`
	Trajectories []string `json:"trajectories"`
}

var memoryFields = map[string]bool{
	"id": true, "title": true, "description": true, "targetUserId": true,
	"contributorName": true, "contributorEmail": true,
	"registeredContributorId": true, "contributorColor": true,
	"coordinates": true, "timestamp": true, "type": true, "media": true,
	"tags": true, "isPublic": true,
}

// ContributorKey returns the identity of the contributor who left the
// memory, preferring the email over the registered contributor ID.
func (m *Memory) ContributorKey() string {
	if m.ContributorEmail != "" {
		return m.ContributorEmail
	}
	return m.RegisteredContributorID
}

// MarshalJSON merges Extra into the top level of the JSON object.
func (m Memory) MarshalJSON() ([]byte, error) {
	type memoryAlias Memory
	alias := memoryAlias(m)
	if alias.Media.Images == nil {
		alias.Media.Images = []string{}
	}
	if alias.Media.Trajectories == nil {
		alias.Media.Trajectories = []string{}
	}
	return marshalWithExtra(alias, m.Extra)
}

// UnmarshalJSON collects unknown top-level keys into Extra.
func (m *Memory) UnmarshalJSON(data []byte) error {
	type memoryAlias Memory
	var alias memoryAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*m = Memory(alias)

	extra, err := extractExtra(data, memoryFields)
	if err != nil {
		return err
	}
	m.Extra = extra
	return nil
}
