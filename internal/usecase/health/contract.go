package health

import "context"

// Pinger checks availability of a storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks the search index is readable.
type IndexChecker interface {
	Count() (uint64, error)
}
