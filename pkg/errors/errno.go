// Package errors carries the assistant's coded errors.
//
// An Errno pairs a stable numeric code with the HTTP status and the text a
// user sees in the "response" field. Codes are laid out as AABBCCC:
//
//	AA  service (00 shared, 20 assistant)
//	BB  category (request, resource, internal, network...)
//	CCC sequence within the category
//
// Handlers never build Errno values by hand; they derive one from a
// registered code:
//
//	return errors.ErrScanRejected.WithMessagef("File infected: %s", verdict)
package errors

import (
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/grpc/codes"
)

// Errno is a coded error with a user facing message.
type Errno struct {
	Code      int        `json:"code"`
	HTTP      int        `json:"-"`
	GRPCCode  codes.Code `json:"-"`
	MessageEN string     `json:"message"`
	MessageZH string     `json:"message_zh,omitempty"`

	cause error
}

func (e *Errno) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("errno %d: %s", e.Code, e.MessageEN)
	}
	return fmt.Sprintf("errno %d: %s: %v", e.Code, e.MessageEN, e.cause)
}

func (e *Errno) Unwrap() error { return e.cause }

// Is matches on code only, so a derived Errno still satisfies
// errors.Is against the registered value it came from.
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	return ok && t.Code == e.Code
}

func (e *Errno) clone() *Errno {
	c := *e
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *Errno) WithCause(cause error) *Errno {
	c := e.clone()
	c.cause = cause
	return c
}

// WithMessage returns a copy of e whose English text is msg.
func (e *Errno) WithMessage(msg string) *Errno {
	c := e.clone()
	c.MessageEN = msg
	return c
}

func (e *Errno) WithMessagef(format string, args ...any) *Errno {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Message picks the text for lang. Anything other than a zh variant, or a
// code without Chinese text, yields the English message.
func (e *Errno) Message(lang string) string {
	switch lang {
	case "zh", "zh-CN", "zh_CN":
		if e.MessageZH != "" {
			return e.MessageZH
		}
	}
	return e.MessageEN
}

// HTTPStatus defaults to 500 when no status was set.
func (e *Errno) HTTPStatus() int {
	if e.HTTP == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTP
}

// GRPCStatus defaults to codes.Internal when no status was set.
func (e *Errno) GRPCStatus() codes.Code {
	if e.GRPCCode == codes.OK && e.Code != 0 {
		return codes.Internal
	}
	return e.GRPCCode
}

// New builds an unregistered Errno.
func New(code, httpStatus int, grpcCode codes.Code, en, zh string) *Errno {
	return &Errno{Code: code, HTTP: httpStatus, GRPCCode: grpcCode, MessageEN: en, MessageZH: zh}
}

var (
	registryMu sync.Mutex
	registry   = map[int]*Errno{}
)

// Register records e and panics when its code is taken.
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()
	if prev, ok := registry[e.Code]; ok {
		panic(fmt.Sprintf("errno %d registered twice (%q, %q)", e.Code, prev.MessageEN, e.MessageEN))
	}
	registry[e.Code] = e
	return e
}

// FromError returns the first Errno in err's chain, or ErrInternal wrapping
// err when there is none.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}
