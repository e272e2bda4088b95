package chaincode

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected transition. The kind is rendered into the error
// message so it survives the proposal-response boundary and can be mapped to an
// HTTP status by the gateway.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindInvalidRole         Kind = "INVALID_ROLE"
	KindInvalidField        Kind = "INVALID_FIELD"
	KindDuplicateKey        Kind = "DUPLICATE_KEY"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindSelfTrade           Kind = "SELF_TRADE"
)

// Error is a terminal transition failure. A transition that returns an Error
// has written nothing to the ledger.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func transitionError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the transition kind carried by err, or "" for infrastructure
// failures (ledger I/O, codec) that carry no kind.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
