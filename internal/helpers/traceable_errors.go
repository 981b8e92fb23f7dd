package helpers

import (
	"strings"

	"github.com/ztrue/tracerr"
)

// Error carries one or more stack-traced errors. The zero value (NilError)
// means success, so it can be returned by value like a plain error.
type Error struct {
	errs []tracerr.Error
}

var NilError = Error{nil}

func (e Error) IsNil() bool {
	return IsNil(e)
}

func IsNil(err error) bool {
	if traceableErr, ok := err.(Error); ok {
		return traceableErr.First() == nil
	}
	if traceableErr, ok := err.(*Error); ok {
		return traceableErr == nil || traceableErr.First() == nil
	}
	return err == nil
}

func (e Error) Error() string {
	result := []string{}
	for _, err := range e.errs {
		if err != nil {
			result = append(result, err.Error())
		}
	}
	return strings.Join(result, "; ")
}

// String includes the stack trace of every joined error.
func (e Error) String() string {
	result := ""
	for _, err := range e.errs {
		if err == nil {
			continue
		}
		result += "-------------------------------------------------------------------------------\n"
		result += Indent(tracerr.Sprint(err), ".  ") + "\n"
	}
	return result
}

func (e Error) First() tracerr.Error {
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[0]
}

func (e Error) Unwrap() []error {
	result := []error{}
	for _, err := range e.errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}



func Wrap(err error) Error {
	if IsNil(err) {
		return NilError
	}
	if traceableErr, ok := err.(Error); ok {
		return traceableErr
	}
	return Error{[]tracerr.Error{tracerr.Wrap(err)}}
}

func Errorf(format string, args ...interface{}) Error {
	return Error{[]tracerr.Error{tracerr.Errorf(format, args...)}}
}

func Join(others ...Error) Error {
	result := Error{}
	for _, o := range others {
		for _, err := range o.errs {
			if err != nil {
				result.errs = append(result.errs, err)
			}
		}
	}
	if len(result.errs) == 0 {
		return NilError
	}
	return result
}
