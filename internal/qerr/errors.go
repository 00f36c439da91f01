// Package qerr classifies failures of the question-to-query pipeline.
//
// Every component returns a *Error carrying one Kind, so callers can tell
// "bad input" from "bad generation" from "bad store state" with errors.Is
// against the sentinels below.
package qerr

import (
	"errors"
	"fmt"
)

// Kind is the class of a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput is malformed or empty caller input. Nothing was executed.
	KindInvalidInput
	// KindGenerationService means the text-generation service was unreachable
	// or answered with something unusable.
	KindGenerationService
	// KindInvalidQuery means generated text failed structural validation.
	KindInvalidQuery
	// KindExecution means the graph store rejected or failed a validated query.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindGenerationService:
		return "generation_service"
	case KindInvalidQuery:
		return "invalid_query"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrGenerationService = &Error{Kind: KindGenerationService}
	ErrInvalidQuery      = &Error{Kind: KindInvalidQuery}
	ErrExecution         = &Error{Kind: KindExecution}
)

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "cypher.extract".
	Op string
	// Message is a short human readable reason.
	Message string
	// Text is the rejected input, kept for diagnostics. Only set for
	// KindInvalidQuery and KindInvalidInput.
	Text string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidInput(op, message string) error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: message}
}

func GenerationService(op string, err error) error {
	return &Error{Kind: KindGenerationService, Op: op, Message: "text generation failed", Err: err}
}

// InvalidQuery records the rejected text alongside the reason.
func InvalidQuery(op, text, message string) error {
	return &Error{Kind: KindInvalidQuery, Op: op, Message: message, Text: text}
}

// Execution wraps a store failure. The store's message is preserved through Err.
func Execution(op string, err error) error {
	return &Error{Kind: KindExecution, Op: op, Message: "query execution failed", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// RejectedText returns the rejected input carried by err, if any.
func RejectedText(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Text
	}
	return ""
}
