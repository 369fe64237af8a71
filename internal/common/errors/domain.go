package commonerrors

import "net/http"

var (
	ErrMissingRequiredEnv = NewDomainError(
		"ENVIRONMENT_MISSING",
		KindEnvironment,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidEnv = NewDomainError(
		"ENVIRONMENT_INVALID",
		KindEnvironment,
		http.StatusInternalServerError,
		"invalid environment variable",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		KindInternal,
		http.StatusInternalServerError,
		"internal server error",
	)

	ErrHashFailed = NewDomainError(
		"CREDENTIAL_HASH_FAILED",
		KindInternal,
		http.StatusInternalServerError,
		"failed to derive credential digest",
	)

	ErrAlreadyExists = NewDomainError(
		"AUTH_ALREADY_EXISTS",
		KindAuth,
		http.StatusBadRequest,
		"identity already exists",
	)

	ErrInvalidCredential = NewDomainError(
		"AUTH_INVALID_CREDENTIAL",
		KindAuth,
		http.StatusUnauthorized,
		"invalid credential",
	)

	ErrMissingCredential = NewDomainError(
		"AUTH_MISSING_CREDENTIAL",
		KindAuth,
		http.StatusForbidden,
		"missing authorization header",
	)

	ErrValidation = NewDomainError(
		"AUTH_VALIDATION_FAILED",
		KindAuth,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrNotFound = NewDomainError(
		"STORAGE_NOT_FOUND",
		KindStorage,
		http.StatusNotFound,
		"record not found",
	)

	ErrUnavailable = NewDomainError(
		"STORAGE_UNAVAILABLE",
		KindStorage,
		http.StatusServiceUnavailable,
		"storage unavailable",
	)

	ErrConflict = NewDomainError(
		"STORAGE_CONFLICT",
		KindStorage,
		http.StatusConflict,
		"constraint violation",
	)

	ErrBackend = NewDomainError(
		"STORAGE_BACKEND",
		KindStorage,
		http.StatusInternalServerError,
		"database operation failed",
	)

	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		KindStorage,
		http.StatusServiceUnavailable,
		"circuit breaker is open",
	)

	ErrInvalidJSON = NewDomainError(
		"INVALID_JSON",
		KindRequest,
		http.StatusBadRequest,
		"invalid json",
	)

	ErrInvalidID = NewDomainError(
		"INVALID_ID",
		KindRequest,
		http.StatusBadRequest,
		"invalid identifier",
	)

	ErrMethodNotAllowed = NewDomainError(
		"METHOD_NOT_ALLOWED",
		KindRequest,
		http.StatusMethodNotAllowed,
		"method not allowed",
	)

	ErrRequestTooLarge = NewDomainError(
		"REQUEST_TOO_LARGE",
		KindRequest,
		http.StatusRequestEntityTooLarge,
		"request body too large",
	)
)
