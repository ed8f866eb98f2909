package domain

// Summary counts what a run did.
type Summary struct {
	Created   int
	Updated   int
	Untouched int
	Skipped   int
	Failed    int
}

// Processed returns the number of repositories that reached the tracker.
func (s Summary) Processed() int {
	return s.Created + s.Updated + s.Untouched
}
