// Package gcperr maps Google Cloud API failures onto the books error sentinels.
package gcperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lehigh-university-libraries/bookshelf/internal/books"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Classify wraps err with ErrNotFound, ErrPermissionDenied or ErrUnavailable
// when it is a REST or gRPC error of that kind. Other errors are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var sentinel error
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		sentinel = fromHTTP(apiErr.Code)
	} else if s, ok := status.FromError(err); ok {
		sentinel = fromGRPC(s.Code())
	}

	if sentinel == nil {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func fromHTTP(code int) error {
	switch {
	case code == http.StatusNotFound:
		return books.ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return books.ErrPermissionDenied
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return books.ErrUnavailable
	}
	return nil
}

func fromGRPC(code codes.Code) error {
	switch code {
	case codes.NotFound:
		return books.ErrNotFound
	case codes.PermissionDenied, codes.Unauthenticated:
		return books.ErrPermissionDenied
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return books.ErrUnavailable
	}
	return nil
}
