package errors

import (
	stderrors "errors"
	"strings"

	"github.com/vango-dev/isomorph/pkg/prefetch"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/ssr"
	"github.com/vango-dev/isomorph/pkg/store"
)

// Classify maps an error returned by the rendering packages to a coded
// Error. Unknown errors become an uncoded internal error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var coded *Error
	if stderrors.As(err, &coded) {
		return coded
	}

	if stderrors.Is(err, ssr.ErrNotFound) {
		return New("E001").Wrap(err)
	}

	var pf *prefetch.Error
	if stderrors.As(err, &pf) {
		code := "E010"
		var pe *prefetch.PanicError
		switch {
		case stderrors.As(err, &pe):
			code = "E011"
		case stderrors.Is(err, prefetch.ErrNotSettled):
			code = "E012"
		}
		return New(code).Wrap(err).
			WithDetail("Failed routes: " + strings.Join(pf.Routes(), ", "))
	}

	var se *store.SerializationError
	if stderrors.As(err, &se) {
		return New("E030").Wrap(err).WithDetail("Offending value at " + se.Path + ".")
	}

	var mv *router.MultiValidationError
	if stderrors.As(err, &mv) && len(mv.Errors) > 0 {
		code := "E101"
		switch mv.Errors[0].Type {
		case router.ErrorDuplicateRoute:
			code = "E100"
		case router.ErrorNodeReused:
			code = "E102"
		case router.ErrorMissingComponent:
			code = "E103"
		}
		return New(code).Wrap(err)
	}

	e := Newf(CategoryInternal, "internal error")
	e.Wrapped = err
	return e
}
