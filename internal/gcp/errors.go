package gcp

import (
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isGoogleAPIErrorNotFound(err error, msg string) (bool, error) {
	gErr, ok := err.(*googleapi.Error)
	if ok {
		switch gErr.Code {
		case http.StatusNotFound:
			return true, nil
		case http.StatusForbidden:
			return false, fmt.Errorf("%s: permission denied", msg)
		}
	}
	return false, fmt.Errorf("%s: %w", msg, err)
}

func isGoogleGRPCErrorNotFound(err error, msg string) (bool, error) {
	st, ok := status.FromError(err)
	if ok {
		switch st.Code() {
		case codes.NotFound:
			return true, nil
		case codes.PermissionDenied:
			return false, fmt.Errorf("%s: permission denied", msg)
		default:
			if strings.Contains(st.Message(), "already deleted") {
				return true, nil
			}
		}
	}
	return false, fmt.Errorf("%s: %w", msg, err)
}
