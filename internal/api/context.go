package api

import (
	"fmt"

	"github.com/amterp/memmap/internal/color"
	"github.com/amterp/memmap/internal/config"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/metrics"
	"github.com/amterp/memmap/internal/service"
)

// AppContext bundles the dependencies shared by all HTTP handlers.
type AppContext struct {
	Paths        *config.Paths
	Engine       *color.Engine
	Contributors *service.ContributorService
	Memories     *service.MemoryService
	Members      *service.MemberService
	Uploads      *service.UploadService
	ColorDoctor  *service.ColorDoctorService
	Logger       logging.Logger
	Metrics      metrics.Collector
}

// Validate checks that every required dependency is set and fills in Nop
// logger and metrics when missing.
func (c *AppContext) Validate() error {
	switch {
	case c.Paths == nil:
		return fmt.Errorf("paths are required")
	case c.Engine == nil:
		return fmt.Errorf("color engine is required")
	case c.Contributors == nil || c.Memories == nil || c.Members == nil:
		return fmt.Errorf("contributor, memory and member services are required")
	case c.Uploads == nil || c.ColorDoctor == nil:
		return fmt.Errorf("upload and color doctor services are required")
	}
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNop()
	}
	return nil
}
