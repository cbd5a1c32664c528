package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the settings backend is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	settings Pinger
	comments Pinger
	index    IndexChecker
}

// New creates a Service. settings is the Redis store, comments the default
// comment store. index can be nil.
func New(settings, comments Pinger, index IndexChecker) *Service {
	return &Service{settings: settings, comments: comments, index: index}
}

// Check runs health checks against all components. Without the settings
// store nothing can be served, so its failure makes the report unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["settings"] = result(s.settings.Ping(ctx))
	checks["comments"] = result(s.comments.Ping(ctx))
	if s.index != nil {
		_, err := s.index.Count()
		checks["index"] = result(err)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["settings"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
