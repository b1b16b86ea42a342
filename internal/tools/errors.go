package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ParamError reports a tool parameter that failed validation.
type ParamError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: invalid parameters: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: invalid parameter %q: %s", e.Tool, e.Param, e.Reason)
}

// UnknownToolError reports a tool name that is not registered.
type UnknownToolError struct {
	Name  string
	Known []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// IsParamError reports whether err was caused by bad tool input rather than
// by the corpus or the environment.
func IsParamError(err error) bool {
	var pe *ParamError
	var ue *UnknownToolError
	return errors.As(err, &pe) || errors.As(err, &ue)
}
