package errs

import (
	"github.com/pkg/errors"
)

// These codes identify which of the five abstract error categories an
// Error belongs to, plus CodeUnknown. Codes are stable and safe to compare across versions.
const (
	CodeUnsupportedCapability = 1001
	CodeConfigurationFailure  = 1002
	CodeBitstreamFailure      = 1003
	CodeResourceFailure       = 1004
	CodeProtocolDrift         = 1005
	CodeUnknown               = 9999
)

var (
	ErrUnsupported   = New(CodeUnsupportedCapability, "capability not supported in this environment")
	ErrNotConfigured = New(CodeConfigurationFailure, "pipe is not configured")
	ErrBitstream     = New(CodeBitstreamFailure, "keyframe missing required parameter sets")
	ErrDecoderReset  = New(CodeResourceFailure, "decoder reset")
)

const (
	Success = "success"
)

type Error struct {
	Code  int32
	Msg   string
	cause error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(code int32, msg string) error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

func Code(e error) int32 {
	if e == nil {
		return 0
	}
	err, ok := e.(*Error)
	if !ok {
		return CodeUnknown
	}

	if err == (*Error)(nil) {
		return 0
	}
	return err.Code
}

func Msg(e error) string {
	if e == nil {
		return Success
	}
	err, ok := e.(*Error)
	if !ok {
		return "unknown error: " + e.Error()
	}

	if err == (*Error)(nil) {
		return Success
	}

	return err.Msg
}

// Wrap attaches a code and a stack trace (via pkg/errors) to an
// underlying cause, for the Resource-failure and Configuration-failure
// kinds that originate from a decoder backend or a renderer backend.
func Wrap(code int32, cause error, msg string) error {
	return &Error{
		Code:  code,
		Msg:   msg,
		cause: errors.WithStack(cause),
	}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
