// Package gate decides whether a content query is redirected to the
// external search index or answered by the default data store.
//
// The decision is pure: every input arrives as a parameter, nothing is read
// from globals and nothing is written.
package gate

import "github.com/kailas-cloud/searchgate/internal/domain/query"

// Reason names the rule that produced a decision.
type Reason string

const (
	// ReasonOptOut means the query carried ep_integrate=false.
	ReasonOptOut Reason = "opt_out"
	// ReasonAJAXExcluded means an AJAX query without AJAX integration.
	ReasonAJAXExcluded Reason = "ajax_excluded"
	// ReasonAdminExcluded means an admin query without admin integration.
	ReasonAdminExcluded Reason = "admin_excluded"
	// ReasonFeatureDisabled means the feature toggle is off.
	ReasonFeatureDisabled Reason = "feature_disabled"
	// ReasonForced means the query carried ep_integrate=true.
	ReasonForced Reason = "forced"
	// ReasonSearchTerm means the query has a search term.
	ReasonSearchTerm Reason = "search_term"
	// ReasonNoSearchTerm means the query has no search term.
	ReasonNoSearchTerm Reason = "no_search_term"
)

// Decision is the outcome of Evaluate.
type Decision struct {
	Integrate bool
	Reason    Reason
}

// Evaluate runs the integration rules in priority order.
func Evaluate(qc query.Context, featureEnabled, hasSearchTerm bool) Decision {
	if qc.Integrate == query.ForceDisable {
		return Decision{Reason: ReasonOptOut}
	}

	adminIntegration := qc.AdminIntegration
	if qc.IsAJAX() {
		if !qc.AJAXIntegration {
			return Decision{Reason: ReasonAJAXExcluded}
		}
		// AJAX integration implies admin integration.
		adminIntegration = true
	}

	if qc.IsAdmin() && !adminIntegration {
		return Decision{Reason: ReasonAdminExcluded}
	}

	if !featureEnabled {
		return Decision{Reason: ReasonFeatureDisabled}
	}

	if qc.Integrate == query.ForceEnable {
		return Decision{Integrate: true, Reason: ReasonForced}
	}
	if hasSearchTerm {
		return Decision{Integrate: true, Reason: ReasonSearchTerm}
	}
	return Decision{Reason: ReasonNoSearchTerm}
}

// ShouldIntegrate reports whether the query goes to the search index.
func ShouldIntegrate(qc query.Context, featureEnabled, hasSearchTerm bool) bool {
	return Evaluate(qc, featureEnabled, hasSearchTerm).Integrate
}
