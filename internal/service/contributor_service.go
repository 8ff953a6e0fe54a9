package service

import (
	"context"
	"sort"
	"strings"

	"github.com/amterp/memmap/internal/color"
	"github.com/amterp/memmap/internal/config"
	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
	"github.com/amterp/memmap/internal/util"
)

// ContributorService handles contributor registration and their colors.
type ContributorService struct {
	store  store.ContributorStore
	engine *color.Engine
	logger logging.Logger
	now    func() string
}

// NewContributorService creates a new contributor service.
func NewContributorService(contributorStore store.ContributorStore, engine *color.Engine, logger logging.Logger) *ContributorService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ContributorService{
		store:  contributorStore,
		engine: engine,
		logger: logger,
		now:    util.NowISO,
	}
}

// RegisterInput contains the input for registering a contributor.
type RegisterInput struct {
	Email      string
	Name       string
	Role       string
	Department string
	Biography  string
	Extra      map[string]any // client-defined fields kept on the record
}

// Register creates or updates the contributor keyed by email and makes
// sure they have a color. Re-registering keeps the original registration
// date, color and contribution lists; non-empty input fields overwrite.
func (s *ContributorService) Register(ctx context.Context, input RegisterInput) (*model.Contributor, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validateID(email); err != nil {
		return nil, err
	}

	c, err := s.store.Get(ctx, email)
	switch {
	case err == nil:
	case memerr.IsNotFound(err):
		c = &model.Contributor{
			ID:               email,
			Email:            email,
			RegistrationDate: s.now(),
		}
	default:
		return nil, err
	}

	setIfNotEmpty(&c.Name, input.Name)
	setIfNotEmpty(&c.Role, input.Role)
	setIfNotEmpty(&c.Department, input.Department)
	setIfNotEmpty(&c.Biography, input.Biography)
	if c.Email == "" {
		c.Email = email
	}
	if c.RegistrationDate == "" {
		c.RegistrationDate = s.now()
	}
	for k, v := range input.Extra {
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}

	s.ensureColor(ctx, c)

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("contributor registered", "identity", c.Identity(), "color", c.Color)
	return c, nil
}

// Save stores a client-supplied record as-is, filling in the ID and color
// when missing. A color the engine doesn't know is adopted.
func (s *ContributorService) Save(ctx context.Context, c *model.Contributor) (*model.Contributor, error) {
	if err := s.prepare(ctx, c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SaveAll stores client-supplied records in bulk, with the same filling
// and adoption rules as Save. Records missing a color are assigned in
// registration order, so the same batch always yields the same colors.
func (s *ContributorService) SaveAll(ctx context.Context, cs []*model.Contributor) error {
	ordered := make([]*model.Contributor, 0, len(cs))
	for _, c := range cs {
		if c.ID == "" {
			c.ID = strings.TrimSpace(c.Email)
		}
		if err := validateID(c.ID); err != nil {
			return err
		}
		ordered = append(ordered, c)
	}
	SortByRegistration(ordered)

	for _, c := range ordered {
		s.ensureColor(ctx, c)
	}
	return s.store.SaveAll(ctx, ordered)
}

func (s *ContributorService) prepare(ctx context.Context, c *model.Contributor) error {
	if c.ID == "" {
		c.ID = strings.TrimSpace(c.Email)
	}
	if err := validateID(c.ID); err != nil {
		return err
	}
	s.ensureColor(ctx, c)
	return nil
}

// validateID rejects IDs that can't be stored one-to-one as a record file.
func validateID(id string) error {
	switch {
	case id == "":
		return memerr.InvalidField("id", "contributor needs an id or email")
	case strings.HasPrefix(id, "."):
		return memerr.InvalidField("id", "must not start with '.'")
	case strings.HasPrefix(id, config.ContributorSnapshotPrefix):
		return memerr.InvalidField("id", "must not start with "+config.ContributorSnapshotPrefix)
	case config.SafeFileName(id) != id:
		return memerr.InvalidField("id", "may only contain letters, digits and . _ @ + -")
	}
	return nil
}

// SortByRegistration orders contributors by registration date, then ID.
func SortByRegistration(cs []*model.Contributor) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].RegistrationDate != cs[j].RegistrationDate {
			return cs[i].RegistrationDate < cs[j].RegistrationDate
		}
		return cs[i].ID < cs[j].ID
	})
}

// ensureColor fills c.Color from the engine, or hands the record's own
// color to the engine when they disagree. The record wins.
func (s *ContributorService) ensureColor(ctx context.Context, c *model.Contributor) {
	identity := c.Identity()
	if c.Color == "" {
		c.Color = s.engine.Assign(ctx, identity)
		return
	}
	if existing, ok := s.engine.Lookup(identity); ok && existing == c.Color {
		return
	}
	if err := s.engine.Adopt(ctx, map[string]string{identity: c.Color}); err != nil {
		s.logger.Warn("failed to persist adopted color",
			"key", store.ColorsKey,
			"identity", identity,
			"error", err)
	}
}

// Lookup returns the contributor registered under email.
func (s *ContributorService) Lookup(ctx context.Context, email string) (*model.Contributor, error) {
	return s.store.Get(ctx, strings.TrimSpace(email))
}

// List returns all contributors.
func (s *ContributorService) List(ctx context.Context) ([]*model.Contributor, error) {
	return s.store.List(ctx)
}

// Delete removes a contributor record. Their color assignment stays so a
// returning contributor keeps it.
func (s *ContributorService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Color returns the identity's color, or the default when unassigned.
func (s *ContributorService) Color(identity string) (string, bool) {
	if c, ok := s.engine.Lookup(identity); ok {
		return c, true
	}
	return s.engine.DefaultColor(), false
}

// Colors returns every identity's assigned color.
func (s *ContributorService) Colors() map[string]string {
	return s.engine.Snapshot().Assignments
}

// RecordColors returns {identity: color} from the stored records, for
// restoring the engine at startup.
func (s *ContributorService) RecordColors(ctx context.Context) (map[string]string, error) {
	cs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	colors := make(map[string]string, len(cs))
	for _, c := range cs {
		if c.Color != "" {
			colors[c.Identity()] = c.Color
		}
	}
	return colors, nil
}

// ValidateEmail reports whether email is acceptable as a contributor key.
func ValidateEmail(email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return validateID(email)
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", memerr.InvalidField("email", "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t/\\") {
		return "", memerr.InvalidField("email", "not a valid address: "+email)
	}
	return email, nil
}

func setIfNotEmpty(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
