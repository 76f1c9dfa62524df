package vector

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	InvalidArgument Kind = iota + 1
	DivisionByZero
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case DivisionByZero:
		return "division by zero"
	}
	return fmt.Sprintf("unknown error kind %d", uint8(k))
}

var (
	ErrInvalidArgument = errors.New(InvalidArgument.String())
	ErrDivisionByZero  = errors.New(DivisionByZero.String())
)

// Error is returned by every operation in this package that rejects its
// arguments. The receiver is never modified when an Error is returned.
type Error struct {
	Kind    Kind
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap lets errors.Is match against ErrInvalidArgument and
// ErrDivisionByZero.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case InvalidArgument:
		return ErrInvalidArgument
	case DivisionByZero:
		return ErrDivisionByZero
	}
	return nil
}

func invalid(op, message string) error {
	return &Error{Kind: InvalidArgument, Op: op, Message: message}
}

const (
	msgNumber       = "expects a number as the parameter"
	msgVector       = "expects a Vector as the parameter"
	msgNonZero      = "expects a non-zero number as the parameter"
	msgSetSource    = "set expects a Vector or two/three numbers"
	msgMapFunction  = "expects a function that returns a number as the parameter"
	msgMatrix       = "invalid matrix"
	msgTwoNumbers   = "expects two numbers as the parameters"
	msgTwoVectors   = "expects two instances of Vector as parameters"
	msgFirstVector  = "expects a Vector as the first parameter"
	msgSecondNumber = "expects a number as the second parameter"
	msgSecondDiv    = "expects a non-zero number as the second parameter"
	msgSecondFunc   = "expects a function as the second parameter"
	msgAngle        = "expects a number as the first parameter"
	msgPivot        = "expects a Vector as the second parameter"
	msgOverflow     = "result is not a finite number"
)
