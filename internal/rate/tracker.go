package rate

import "github.com/kjannette/trahn-swap/internal/catalog"

// Inputs is the full dependency set of Convert. A change in any member,
// including the source symbol or the catalog snapshot, invalidates the
// previous result.
type Inputs struct {
	Catalog     *catalog.Catalog
	Source      string
	Destination string
	Amount      float64
}

type Result struct {
	Value float64
	Err   error
}

// Tracker recomputes a conversion only when its inputs change.
type Tracker struct {
	valid bool
	last  Inputs
	res   Result
	runs  int
}

// Update returns the conversion for in and whether it was recomputed.
func (t *Tracker) Update(in Inputs) (Result, bool) {
	if t.valid && in == t.last {
		return t.res, false
	}
	v, err := Convert(in.Catalog, in.Source, in.Destination, in.Amount)
	t.last = in
	t.res = Result{Value: v, Err: err}
	t.valid = true
	t.runs++
	return t.res, true
}

// Reset forgets the last inputs so the next Update always recomputes.
func (t *Tracker) Reset() {
	*t = Tracker{runs: t.runs}
}

// Runs counts recomputations.
func (t *Tracker) Runs() int { return t.runs }
