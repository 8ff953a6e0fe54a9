package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/amterp/memmap/internal/color"
	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/id"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
	"github.com/amterp/memmap/internal/util"
)

// MemoryService handles memories pinned to the map.
type MemoryService struct {
	memoryStore      store.MemoryStore
	contributorStore store.ContributorStore
	engine           *color.Engine
	members          *MemberService
	logger           logging.Logger
	now              func() string
	newID            func() string
}

// NewMemoryService creates a new memory service. members may be nil, in
// which case any target ID is accepted.
func NewMemoryService(
	memoryStore store.MemoryStore,
	contributorStore store.ContributorStore,
	engine *color.Engine,
	members *MemberService,
	logger logging.Logger,
) *MemoryService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MemoryService{
		memoryStore:      memoryStore,
		contributorStore: contributorStore,
		engine:           engine,
		members:          members,
		logger:           logger,
		now:              util.NowISO,
		newID:            id.Generate,
	}
}

// AddMemoryInput contains the input for adding a memory.
type AddMemoryInput struct {
	Title            string
	Description      string
	TargetUserID     string
	ContributorName  string
	ContributorEmail string
	Coordinates      []float64 // [lng, lat]
	Type             string
	Media            model.Media
	Tags             []string
	IsPublic         bool
	Extra            map[string]any
}

// Add validates and stores a new memory. A registered contributor's color
// is stamped on the memory and the memory is appended to their
// contributions.
func (s *MemoryService) Add(ctx context.Context, input AddMemoryInput) (*model.Memory, error) {
	target := strings.TrimSpace(input.TargetUserID)
	if target == "" {
		return nil, memerr.InvalidField("targetUserId", "target member is required")
	}
	if s.members != nil && s.members.Len() > 0 && !s.members.Exists(target) {
		return nil, memerr.InvalidField("targetUserId", "unknown member: "+target)
	}
	if err := validateCoordinates(input.Coordinates); err != nil {
		return nil, err
	}

	m := &model.Memory{
		ID:               s.newID(),
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		TargetUserID:     target,
		ContributorName:  strings.TrimSpace(input.ContributorName),
		ContributorEmail: strings.TrimSpace(input.ContributorEmail),
		Coordinates:      []float64{input.Coordinates[0], input.Coordinates[1]},
		Timestamp:        s.now(),
		Type:             input.Type,
		Media:            input.Media,
		Tags:             input.Tags,
		IsPublic:         input.IsPublic,
		Extra:            input.Extra,
	}
	if m.Type == "" {
		m.Type = model.DefaultMemoryType
	}

	var contributor *model.Contributor
	if m.ContributorEmail != "" {
		c, err := s.contributorStore.Get(ctx, m.ContributorEmail)
		switch {
		case err == nil:
			contributor = c
			m.RegisteredContributorID = c.ID
			if m.ContributorName == "" {
				m.ContributorName = c.Name
			}
		case memerr.IsNotFound(err):
		default:
			return nil, err
		}
	}
	if c, ok := s.engine.Lookup(m.ContributorKey()); ok {
		m.ContributorColor = c
	} else if contributor != nil && contributor.Color != "" {
		m.ContributorColor = contributor.Color
	}

	if err := s.memoryStore.Save(ctx, m); err != nil {
		return nil, err
	}

	if contributor != nil {
		contributor.MemoriesContributed = append(contributor.MemoriesContributed, m.ID)
		if err := s.contributorStore.Save(ctx, contributor); err != nil {
			// The memory is saved; RefreshContributions repairs the list.
			s.logger.Warn("failed to record contribution", "identity", contributor.Identity(), "memory", m.ID, "error", err)
		}
	}

	s.logger.Info("memory added", "id", m.ID, "target", m.TargetUserID, "contributor", m.ContributorKey())
	return m, nil
}

func validateCoordinates(coords []float64) error {
	if len(coords) != 2 {
		return memerr.InvalidField("coordinates", "expected [longitude, latitude]")
	}
	lng, lat := coords[0], coords[1]
	if math.IsNaN(lng) || math.IsNaN(lat) {
		return memerr.InvalidField("coordinates", "not a number")
	}
	if lng < -180 || lng > 180 {
		return memerr.InvalidField("coordinates", fmt.Sprintf("longitude %g out of range [-180, 180]", lng))
	}
	if lat < -90 || lat > 90 {
		return memerr.InvalidField("coordinates", fmt.Sprintf("latitude %g out of range [-90, 90]", lat))
	}
	return nil
}

// Get returns a memory by ID.
func (s *MemoryService) Get(ctx context.Context, memoryID string) (*model.Memory, error) {
	return s.memoryStore.Get(ctx, memoryID)
}

// List returns all memories.
func (s *MemoryService) List(ctx context.Context) ([]*model.Memory, error) {
	return s.memoryStore.List(ctx)
}

// ForTarget returns the memories left for one member.
func (s *MemoryService) ForTarget(ctx context.Context, targetUserID string) ([]*model.Memory, error) {
	all, err := s.memoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*model.Memory{}
	for _, m := range all {
		if m.TargetUserID == targetUserID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Delete removes a memory and drops it from its contributor's list.
func (s *MemoryService) Delete(ctx context.Context, memoryID string) error {
	m, err := s.memoryStore.Get(ctx, memoryID)
	if err != nil {
		return err
	}
	if err := s.memoryStore.Delete(ctx, memoryID); err != nil {
		return err
	}

	key := m.RegisteredContributorID
	if key == "" {
		key = m.ContributorEmail
	}
	if key == "" {
		return nil
	}
	c, err := s.contributorStore.Get(ctx, key)
	if err != nil {
		if !memerr.IsNotFound(err) {
			s.logger.Warn("failed to load contributor after delete", "identity", key, "error", err)
		}
		return nil
	}
	if kept, removed := without(c.MemoriesContributed, memoryID); removed {
		c.MemoriesContributed = kept
		if err := s.contributorStore.Save(ctx, c); err != nil {
			s.logger.Warn("failed to update contributions", "identity", key, "memory", memoryID, "error", err)
		}
	}
	return nil
}

// SaveAll stores client-supplied memories in bulk. Memories missing a
// color get their contributor's color when one is assigned.
func (s *MemoryService) SaveAll(ctx context.Context, ms []*model.Memory) error {
	for _, m := range ms {
		if m.ContributorColor == "" {
			if c, ok := s.engine.Lookup(m.ContributorKey()); ok {
				m.ContributorColor = c
			}
		}
	}
	return s.memoryStore.SaveAll(ctx, ms)
}

// RefreshContributions recounts memories per contributor and rewrites the
// memoriesContributed list of every contributor whose list changed.
// Returns the number of contributors updated.
func (s *MemoryService) RefreshContributions(ctx context.Context) (int, error) {
	memories, err := s.memoryStore.List(ctx)
	if err != nil {
		return 0, err
	}
	contributions := make(map[string][]string)
	for _, m := range memories {
		if key := m.ContributorKey(); key != "" {
			contributions[key] = append(contributions[key], m.ID)
		}
	}

	contributors, err := s.contributorStore.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, c := range contributors {
		ids := contributions[c.Identity()]
		if c.ID != c.Identity() {
			ids = append(ids, contributions[c.ID]...)
		}
		slices.Sort(ids)

		current := append([]string(nil), c.MemoriesContributed...)
		slices.Sort(current)
		if slices.Equal(current, ids) {
			continue
		}

		s.logger.Info("contributions updated",
			"identity", c.Identity(),
			"before", len(c.MemoriesContributed),
			"after", len(ids))
		if ids == nil {
			ids = []string{}
		}
		c.MemoriesContributed = ids
		if err := s.contributorStore.Save(ctx, c); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func without(list []string, v string) ([]string, bool) {
	out := make([]string, 0, len(list))
	removed := false
	for _, s := range list {
		if s == v {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}
