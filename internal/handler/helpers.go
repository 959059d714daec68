package handler

import (
	"net/http"

	"dochub/internal/domain/services"
	"dochub/internal/httputil"
	"dochub/internal/policy"
)

// callerFrom builds the service caller from the authenticated request
// context. Unknown roles normalize to the least privileged.
func callerFrom(r *http.Request) services.Caller {
	return services.Caller{
		ID:   httputil.GetUserID(r),
		Role: policy.Normalize(httputil.GetRole(r)),
	}
}

// optionalQuery returns a pointer to the named query parameter, nil when
// absent or empty.
func optionalQuery(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}
