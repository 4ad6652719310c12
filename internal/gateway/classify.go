package gateway

import (
	"net/http"
	"strings"

	"github.com/spec-kit/console-client/internal/api/dto"
	apperrors "github.com/spec-kit/console-client/pkg/util"
)

// DefaultAdminNamespace marks request paths whose 403 means "not an admin".
const DefaultAdminNamespace = "/admin/"

// Classify maps one request outcome to a failure kind. It has no side effects.
// A nil result means success.
func Classify(method, path string, status int, body []byte, transportErr error, adminNamespace string) *apperrors.APIError {
	var err error
	switch {
	case transportErr != nil:
		err = apperrors.NewNetworkUnavailable(path, transportErr)
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		err = apperrors.NewAuthorizationExpired(dto.ErrorMessage(body), path)
	case status == http.StatusForbidden && IsAdminPath(path, adminNamespace):
		err = apperrors.NewAuthorizationDenied(dto.ErrorMessage(body), path)
	default:
		err = apperrors.NewValidationError(dto.ErrorMessage(body), status, path)
	}

	apiErr, _ := apperrors.ToAPIError(err)
	apiErr.Method = method
	return apiErr
}

// IsAdminPath reports whether path falls in the administrative namespace.
func IsAdminPath(path, adminNamespace string) bool {
	if adminNamespace == "" {
		adminNamespace = DefaultAdminNamespace
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.Contains(path, adminNamespace)
}
