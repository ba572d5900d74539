package errs

import (
	"errors"
	"fmt"
)

// Code is the error category. Its value is the process exit code.
type Code int

const (
	Usage Code = iota + 1
	Render
	Launch
)

func (c Code) String() string {
	switch c {
	case Usage:
		return "UsageError"
	case Render:
		return "RenderError"
	case Launch:
		return "LaunchError"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Tags narrow a Code down to the concrete failure.
const (
	TagUsage              = "UsageError"
	TagEmptyDomain        = "EmptyDomain"
	TagInvalidPort        = "InvalidPort"
	TagInvalidUpstream    = "InvalidUpstream"
	TagTemplate           = "TemplateError"
	TagOutput             = "OutputError"
	TagRuntimeUnavailable = "RuntimeUnavailable"
	TagLaunchFailed       = "LaunchFailed"
	TagInterrupted        = "Interrupted"
)

type ErrorDetail struct {
	Code    Code
	Tag     string
	Message error
}

func New(code Code, tag string, err error) *ErrorDetail {
	return &ErrorDetail{Code: code, Tag: tag, Message: err}
}

func Newf(code Code, tag string, format string, args ...any) *ErrorDetail {
	return New(code, tag, fmt.Errorf(format, args...))
}

func (e *ErrorDetail) Error() string {
	if e.Message == nil {
		return e.Tag
	}
	return fmt.Sprintf("%s: %v", e.Tag, e.Message)
}

func (e *ErrorDetail) Unwrap() error {
	return e.Message
}

// HasTag reports whether any ErrorDetail in err's chain carries tag.
func HasTag(err error, tag string) bool {
	var detail *ErrorDetail
	for err != nil {
		if !errors.As(err, &detail) {
			return false
		}
		if detail.Tag == tag {
			return true
		}
		err = detail.Message
	}
	return false
}

// ExitCode maps err to the process exit status. Errors without a category are
// treated as launch errors since everything before launching is classified.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var detail *ErrorDetail
	if errors.As(err, &detail) && detail.Code > 0 {
		return int(detail.Code)
	}
	return int(Launch)
}
