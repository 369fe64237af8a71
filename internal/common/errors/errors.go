package commonerrors

import (
	"errors"
	"fmt"
)

// Kind is the coded error class carried in every response envelope.
type Kind string

const (
	KindEnvironment Kind = "EnvironmentError"
	KindInternal    Kind = "InternalError"
	KindAuth        Kind = "AuthError"
	KindStorage     Kind = "StorageError"
	KindRequest     Kind = "RequestError"
)

type DomainError interface {
	error
	Code() string
	Kind() Kind
	HTTPStatus() int
	Message() string
	Unwrap() error
	Is(target error) bool
	WithCause(cause error) DomainError
	WithMessage(message string) DomainError
}

type domainError struct {
	code    string
	kind    Kind
	status  int
	message string
	cause   error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Kind() Kind {
	return e.kind
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

// Is matches any DomainError with the same code, so a sentinel still matches
// after WithCause or WithMessage.
func (e *domainError) Is(target error) bool {
	var de DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code() == e.code
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:    e.code,
		kind:    e.kind,
		status:  e.status,
		message: e.message,
		cause:   cause,
	}
}

func (e *domainError) WithMessage(message string) DomainError {
	return &domainError{
		code:    e.code,
		kind:    e.kind,
		status:  e.status,
		message: message,
		cause:   e.cause,
	}
}

func NewDomainError(code string, kind Kind, status int, message string) DomainError {
	return &domainError{
		code:    code,
		kind:    kind,
		status:  status,
		message: message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Descriptor is the serialized form of a DomainError.
type Descriptor struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Describe(err error) Descriptor {
	if de, ok := AsDomainError(err); ok {
		return Descriptor{Kind: de.Kind(), Code: de.Code(), Message: de.Message()}
	}
	return Descriptor{Kind: KindInternal, Code: ErrInternalError.Code(), Message: ErrInternalError.Message()}
}
