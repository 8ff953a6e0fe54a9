package service

import (
	"strconv"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/util"
)

// MemberService serves the configured target members.
type MemberService struct {
	members []model.Member
}

// NewMemberService creates a member service from config. Members without
// an ID get one derived from their name.
func NewMemberService(members []model.Member) *MemberService {
	out := make([]model.Member, 0, len(members))
	seen := make(map[string]int)
	for _, m := range members {
		if m.ID == "" {
			m.ID = util.Slugify(m.Name)
		}
		if m.ID == "" {
			continue
		}
		// Two members slugging to the same ID get numbered suffixes.
		if n := seen[m.ID]; n > 0 {
			seen[m.ID] = n + 1
			m.ID = m.ID + "-" + strconv.Itoa(n+1)
		} else {
			seen[m.ID] = 1
		}
		out = append(out, m)
	}
	return &MemberService{members: out}
}

// List returns all members in config order.
func (s *MemberService) List() []model.Member {
	out := make([]model.Member, len(s.members))
	copy(out, s.members)
	return out
}

// Get returns the member with the given ID.
func (s *MemberService) Get(id string) (*model.Member, error) {
	for i := range s.members {
		if s.members[i].ID == id {
			m := s.members[i]
			return &m, nil
		}
	}
	return nil, memerr.MemberNotFound(id)
}

// Exists reports whether a member with the given ID is configured.
func (s *MemberService) Exists(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// ByRole returns members with the given role. An empty role returns all.
func (s *MemberService) ByRole(role string) []model.Member {
	if role == "" {
		return s.List()
	}
	out := []model.Member{}
	for _, m := range s.members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of configured members.
func (s *MemberService) Len() int {
	return len(s.members)
}
