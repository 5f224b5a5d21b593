package errors

import "net/http"

var (
	ErrMissingQuery = New(
		"MISSING_QUERY",
		"Missing or empty 'q' parameter",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"No route matches this path and method",
		http.StatusNotFound,
	)

	ErrBackendUnavailable = New(
		"BACKEND_UNAVAILABLE",
		"Search backend did not answer",
		http.StatusBadGateway,
	)

	ErrBackendQuery = New(
		"BACKEND_QUERY_FAILED",
		"Search backend rejected the query",
		http.StatusBadGateway,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
