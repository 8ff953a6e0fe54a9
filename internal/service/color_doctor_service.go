package service

import (
	"context"
	"fmt"

	"github.com/amterp/memmap/internal/color"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
)

// IssueSeverity indicates how critical an issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue codes for color diagnostics.
const (
	// Errors: contributors that can't be told apart on the map.
	CodeDuplicateColor = "DUPLICATE_COLOR"
	CodeMissingColor   = "MISSING_COLOR"

	// Warnings
	CodeForeignColor        = "FOREIGN_COLOR"
	CodeEngineMismatch      = "ENGINE_MISMATCH"
	CodeMemoryColorMismatch = "MEMORY_COLOR_MISMATCH"
)

// Issue represents a single diagnostic finding.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Code     string        `json:"code"`
	Identity string        `json:"identity,omitempty"`
	MemoryID string        `json:"memory_id,omitempty"`
	Color    string        `json:"color,omitempty"`
	Expected string        `json:"expected,omitempty"`
	Message  string        `json:"message"`
	Fixable  bool          `json:"fixable"`
}

// ColorChange is one contributor or memory color rewrite.
type ColorChange struct {
	Identity string `json:"identity,omitempty"`
	MemoryID string `json:"memory_id,omitempty"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// ReportSummary summarizes the diagnostic results.
type ReportSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Fixed    int `json:"fixed"`
}

// ColorReport contains all color diagnostic results.
type ColorReport struct {
	PaletteSize  int           `json:"palette_size"`
	Contributors int           `json:"contributors"`
	Distinct     int           `json:"distinct_colors"`
	Issues       []Issue       `json:"issues"`
	Changes      []ColorChange `json:"changes,omitempty"`
	DryRun       bool          `json:"dry_run,omitempty"`
	Summary      ReportSummary `json:"summary"`
}

// HasErrors returns true if there are any error-level issues.
func (r *ColorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

func (r *ColorReport) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.Summary.Errors++
	} else {
		r.Summary.Warnings++
	}
}

// ColorDoctorService checks contributor colors for consistency and
// repairs them.
type ColorDoctorService struct {
	contributors store.ContributorStore
	memories     store.MemoryStore
	engine       *color.Engine
	logger       logging.Logger
}

// NewColorDoctorService creates a new color diagnostic service.
func NewColorDoctorService(contributors store.ContributorStore, memories store.MemoryStore, engine *color.Engine, logger logging.Logger) *ColorDoctorService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ColorDoctorService{
		contributors: contributors,
		memories:     memories,
		engine:       engine,
		logger:       logger,
	}
}

// Diagnose checks every contributor and memory color.
func (s *ColorDoctorService) Diagnose(ctx context.Context) (*ColorReport, error) {
	contributors, err := s.registrationOrder(ctx)
	if err != nil {
		return nil, err
	}
	memories, err := s.memories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return s.diagnose(contributors, memories), nil
}

func (s *ColorDoctorService) diagnose(contributors []*model.Contributor, memories []*model.Memory) *ColorReport {
	palette := s.engine.Palette()
	report := &ColorReport{
		PaletteSize:  palette.Len(),
		Contributors: len(contributors),
		Issues:       []Issue{},
	}

	// Duplicates only matter while the palette can still give everyone a
	// distinct color.
	checkDuplicates := len(contributors) <= palette.Len()
	holders := make(map[string]string)
	recordColors := make(map[string]string)

	for _, c := range contributors {
		identity := c.Identity()
		if c.Color == "" {
			report.add(Issue{
				Severity: SeverityError,
				Code:     CodeMissingColor,
				Identity: identity,
				Message:  fmt.Sprintf("%s has no color", identity),
				Fixable:  true,
			})
			continue
		}
		recordColors[identity] = c.Color

		if first, dup := holders[c.Color]; dup {
			if checkDuplicates {
				report.add(Issue{
					Severity: SeverityError,
					Code:     CodeDuplicateColor,
					Identity: identity,
					Color:    c.Color,
					Message:  fmt.Sprintf("%s shares %s with %s", identity, c.Color, first),
					Fixable:  true,
				})
			}
		} else {
			holders[c.Color] = identity
		}

		if !palette.Contains(c.Color) {
			report.add(Issue{
				Severity: SeverityWarning,
				Code:     CodeForeignColor,
				Identity: identity,
				Color:    c.Color,
				Message:  fmt.Sprintf("%s has %s, which is not in the palette", identity, c.Color),
			})
		}

		if engineColor, ok := s.engine.Lookup(identity); !ok || engineColor != c.Color {
			report.add(Issue{
				Severity: SeverityWarning,
				Code:     CodeEngineMismatch,
				Identity: identity,
				Color:    c.Color,
				Expected: engineColor,
				Message:  fmt.Sprintf("%s record has %s but the assignment table has %q", identity, c.Color, engineColor),
				Fixable:  true,
			})
		}
	}
	report.Distinct = len(holders)

	for _, m := range memories {
		want, ok := recordColors[m.ContributorKey()]
		if !ok || m.ContributorColor == want {
			continue
		}
		report.add(Issue{
			Severity: SeverityWarning,
			Code:     CodeMemoryColorMismatch,
			Identity: m.ContributorKey(),
			MemoryID: m.ID,
			Color:    m.ContributorColor,
			Expected: want,
			Message:  fmt.Sprintf("memory %s shows %q, contributor has %s", m.ID, m.ContributorColor, want),
			Fixable:  true,
		})
	}

	return report
}

// Fix repairs colors. When duplicate or missing colors exist, every
// contributor is reassigned in registration order by a fresh engine over
// the same palette, and the live assignment table is replaced. Otherwise
// record colors are adopted where the table disagrees. Memory colors are
// then brought in line with their contributors.
//
// With dryRun the returned report lists the planned changes and nothing
// is written.
func (s *ColorDoctorService) Fix(ctx context.Context, dryRun bool) (*ColorReport, error) {
	contributors, err := s.registrationOrder(ctx)
	if err != nil {
		return nil, err
	}
	memories, err := s.memories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	before := s.diagnose(contributors, memories)
	if len(before.Issues) == 0 {
		before.DryRun = dryRun
		return before, nil
	}

	var changes []ColorChange
	target := make(map[string]string, len(contributors))
	if before.HasErrors() {
		fresh := color.NewEngine(s.engine.Palette())
		for _, c := range contributors {
			target[c.Identity()] = fresh.Assign(ctx, c.Identity())
		}
	} else {
		for _, c := range contributors {
			target[c.Identity()] = c.Color
		}
	}

	var changed []*model.Contributor
	for _, c := range contributors {
		to := target[c.Identity()]
		if c.Color != to {
			changes = append(changes, ColorChange{Identity: c.Identity(), From: c.Color, To: to})
			c.Color = to
			changed = append(changed, c)
		}
	}

	var changedMemories []*model.Memory
	for _, m := range memories {
		to, ok := target[m.ContributorKey()]
		if !ok || m.ContributorColor == to {
			continue
		}
		changes = append(changes, ColorChange{Identity: m.ContributorKey(), MemoryID: m.ID, From: m.ContributorColor, To: to})
		m.ContributorColor = to
		changedMemories = append(changedMemories, m)
	}

	if dryRun {
		before.Changes = changes
		before.DryRun = true
		return before, nil
	}

	for _, c := range changed {
		if err := s.contributors.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to save contributor %s: %w", c.ID, err)
		}
	}
	if before.HasErrors() {
		if err := s.engine.Replace(ctx, target, len(target)); err != nil {
			return nil, fmt.Errorf("failed to persist color assignments: %w", err)
		}
	} else if err := s.engine.Adopt(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to persist color assignments: %w", err)
	}
	for _, m := range changedMemories {
		if err := s.memories.Save(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to save memory %s: %w", m.ID, err)
		}
	}

	s.logger.Info("colors repaired",
		"contributors", len(changed),
		"memories", len(changedMemories),
		"reassigned", before.HasErrors())

	after := s.diagnose(contributors, memories)
	after.Changes = changes
	after.Summary.Fixed = len(changes)
	return after, nil
}

// registrationOrder lists contributors oldest registration first, ties
// broken by ID.
func (s *ColorDoctorService) registrationOrder(ctx context.Context) ([]*model.Contributor, error) {
	cs, err := s.contributors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}
	SortByRegistration(cs)
	return cs, nil
}
