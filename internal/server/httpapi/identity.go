package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/a2hand/internal/common"
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// actor resolves who is acting. A bearer token wins and must agree with the
// claimed name when one is given. Without a token the claim is trusted only
// when authentication is not required.
func (s *HTTPServer) actor(r *http.Request, claimed string) (string, error) {
	claimed = strings.TrimSpace(claimed)

	if token := bearerToken(r); token != "" {
		username, err := s.users.Authenticate(token)
		if err != nil {
			return "", err
		}
		if claimed != "" && claimed != username {
			return "", common.ErrorForbidden
		}
		return username, nil
	}

	if s.opts.RequireAuth {
		return "", common.ErrorUnauthorized
	}
	return claimed, nil
}
