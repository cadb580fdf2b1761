package connection

// Projection is an ordered list of column sets for one entity, widest
// tier first. Repositories walk the tiers when the store rejects a
// column that is not migrated yet; fields dropped by a narrower tier
// come back as nulls, as if the optional columns held no data.
type Projection struct {
	Tiers [][]string
}

// Walk runs fn against each tier in order until it succeeds or fails
// with something other than a missing column. The last error wins when
// every tier is exhausted.
func (p Projection) Walk(fn func(columns []string) error) error {
	var err error
	for _, cols := range p.Tiers {
		err = fn(cols)
		if err == nil || !IsMissingColumn(err) {
			return err
		}
	}
	return err
}
