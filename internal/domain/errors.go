package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindBadRequest
	KindValidation
)

// Error is a failure the caller can act on. Anything that is not an *Error is
// treated as internal.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Fields)
	}
	return e.Message
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Invalid returns a validation error, or nil when fields is empty.
func Invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

var (
	ErrInsufficientStock     = &Error{Kind: KindBadRequest, Message: "insufficient stock"}
	ErrStockNotAvailable     = &Error{Kind: KindBadRequest, Message: "stock not available"}
	ErrInvalidOrderStatus    = &Error{Kind: KindBadRequest, Message: "invalid order status"}
	ErrInvalidShipmentStatus = &Error{Kind: KindBadRequest, Message: "invalid shipment status"}
)

func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}

func IsBadRequest(err error) bool {
	kind, ok := KindOf(err)
	return ok && (kind == KindBadRequest || kind == KindValidation)
}
