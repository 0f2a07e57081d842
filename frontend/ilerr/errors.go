package ilerr

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Errors accumulates diagnostics. A nil *Errors is empty and ready to use:
// With and Merge return the (possibly new) accumulator.
type Errors struct {
	errs []IleError
}

func (r *Errors) With(err ...IleError) *Errors {
	if len(err) == 0 {
		return r
	}
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// Has reports whether any accumulated diagnostic has the given code
func (r *Errors) Has(code ErrCode) bool {
	return slices.ContainsFunc(r.Errors(), func(e IleError) bool { return e.Code() == code })
}

// Codes lists the code of every diagnostic, in the order they were reported
func (r *Errors) Codes() []ErrCode {
	codes := make([]ErrCode, 0, len(r.Errors()))
	for _, e := range r.Errors() {
		codes = append(codes, e.Code())
	}
	return codes
}

// String renders one diagnostic per line
func (r *Errors) String() string {
	lines := make([]string, 0, len(r.Errors()))
	for _, e := range r.Errors() {
		lines = append(lines, FormatWithCode(e))
	}
	return strings.Join(lines, "\n")
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
