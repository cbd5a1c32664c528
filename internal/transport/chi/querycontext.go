package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kailas-cloud/searchgate/internal/domain/query"
)

const (
	// HeaderOrigin marks a request issued from the admin area ("admin").
	HeaderOrigin = "X-EP-Origin"
	// ParamIntegrate is the per-query integration override.
	ParamIntegrate = "ep_integrate"
)

// queryContext builds the per-request query context. Only the ep_integrate
// value can make it fail.
func (s *Server) queryContext(r *http.Request) (query.Context, error) {
	qc := query.Context{
		Origin:           query.OriginPublic,
		Transport:        query.TransportNormal,
		AdminIntegration: s.integration.Admin,
		AJAXIntegration:  s.integration.AJAX,
	}

	if strings.EqualFold(r.Header.Get(HeaderOrigin), string(query.OriginAdmin)) {
		qc.Origin = query.OriginAdmin
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		qc.Transport = query.TransportAJAX
	}

	integrate, err := query.ParseTriState(r.URL.Query().Get(ParamIntegrate))
	if err != nil {
		return query.Context{}, fmt.Errorf("%s: %w", ParamIntegrate, err)
	}
	qc.Integrate = integrate
	return qc, nil
}
