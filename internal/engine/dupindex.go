package engine

// DuplicateIndex maps content digests to the first path that produced them.
// Scoped to a single ScanJob and discarded with it.
//
// The first file seen with a digest is the "original"; the winner depends
// on filesystem enumeration order, which is not guaranteed stable across
// platforms or runs. That nondeterminism is accepted: which copy is
// canonical may change between scans, but the duplicate sets do not.
type DuplicateIndex struct {
	firstSeen map[string]string
}

// NewDuplicateIndex creates an empty index.
func NewDuplicateIndex() *DuplicateIndex {
	return &DuplicateIndex{firstSeen: make(map[string]string)}
}

// Classify records digest -> path on first sight and returns "". Every
// later call with the same digest returns the originally recorded path and
// never overwrites the entry.
func (d *DuplicateIndex) Classify(digest, path string) string {
	if first, ok := d.firstSeen[digest]; ok {
		return first
	}
	d.firstSeen[digest] = path
	return ""
}

// Len returns the number of distinct digests recorded.
func (d *DuplicateIndex) Len() int { return len(d.firstSeen) }
