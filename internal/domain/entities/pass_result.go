package entities

// PassResult counts the per-ref decisions of one reconciliation pass.
type PassResult struct {
	Created   int
	Updated   int
	Deferred  int
	Unchanged int
	Skipped   int
}

// Changed reports whether the pass wrote (or in dry-run would have written) any ref.
// Deferred writes do not count: nothing reached the destination.
func (r PassResult) Changed() bool {
	return r.Created+r.Updated > 0
}

// Merge returns the element-wise sum of r and other.
func (r PassResult) Merge(other PassResult) PassResult {
	return PassResult{
		Created:   r.Created + other.Created,
		Updated:   r.Updated + other.Updated,
		Deferred:  r.Deferred + other.Deferred,
		Unchanged: r.Unchanged + other.Unchanged,
		Skipped:   r.Skipped + other.Skipped,
	}
}
