package ports

import "context"

// HealthChecker is a backing service probed by GET /ready: the storefront
// database, Redis, the mail relay.
type HealthChecker interface {
	// Ping returns nil when the service can take traffic.
	Ping(ctx context.Context) error
	// Name labels the check in the readiness report.
	Name() string
}
