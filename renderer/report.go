package renderer

import (
	"fmt"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/gogpu/gxm"
)

// Reporter records operations the active backend could not perform.
//
// The first report of each (backend kind, operation) pair is logged as a
// warning; repeats are logged at debug level so a missing feature hit on
// every frame does not flood the log. Reporter is safe for concurrent use.
type Reporter struct {
	seen  mapset.Set[string]
	count atomic.Uint64
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{seen: mapset.NewSet[string]()}
}

// Report records that kind has no implementation of op.
func (r *Reporter) Report(kind Kind, op string) {
	r.count.Add(1)
	key := fmt.Sprintf("%s/%s", kind, op)
	if r.seen.Add(key) {
		gxm.Logger().Warn("missing backend feature",
			"backend", string(kind), "op", op, "err", gxm.ErrMissingFeature)
		return
	}
	gxm.Logger().Debug("missing backend feature", "backend", string(kind), "op", op)
}

// Count returns the total number of reports, including repeats.
func (r *Reporter) Count() uint64 {
	return r.count.Load()
}

// Reported returns the distinct "kind/op" pairs reported so far.
func (r *Reporter) Reported() []string {
	return r.seen.ToSlice()
}

// Has reports whether op was reported missing for kind.
func (r *Reporter) Has(kind Kind, op string) bool {
	return r.seen.Contains(fmt.Sprintf("%s/%s", kind, op))
}
