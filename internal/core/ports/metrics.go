package ports

// Metrics counts cache and build events.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	CacheHit(tier string)
	CacheMiss()
	Promoted(tier string)
	Published(tier string)
	TierFailure(tier string)
	Build(pkg string, ok bool)
	// Flush writes the collected metrics to their destination, if any.
	Flush() error
}
