// Package metrics records color assignment and HTTP metrics.
package metrics

// Assignment kinds reported to RecordAssignment.
const (
	KindReused   = "reused"
	KindFirst    = "first"
	KindFarthest = "farthest"
	KindCycled   = "cycled"
)

// Collector receives memmap metrics.
type Collector interface {
	// RecordAssignment counts one Assign call by how its color was chosen.
	RecordAssignment(kind string)
	// RecordPersistFailure counts a failed durable write or load.
	RecordPersistFailure(op string)
	// SetAssignedIdentities reports the size of the assignment map.
	SetAssignedIdentities(n int)
	// RecordHTTPRequest counts one served request.
	RecordHTTPRequest(method string, status int)
}

// NopMetrics discards all metrics.
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

// NewNop creates a no-op collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (n *NopMetrics) RecordAssignment(_ string) {}
func (n *NopMetrics) RecordPersistFailure(_ string) {}
func (n *NopMetrics) SetAssignedIdentities(_ int) {}
func (n *NopMetrics) RecordHTTPRequest(_ string, _ int) {}
