// Package backend lowers a type hierarchy and analyzed case lists to Go
// source: Go types for the declarations, and one dispatch function per
// case list.
package backend

import (
	"bytes"
	goast "go/ast"
	"go/format"
	"go/token"
	"log/slog"

	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
	"github.com/pkg/errors"
)

type Transpiler struct {
	h    *types.Hierarchy
	fset *token.FileSet

	*slog.Logger
}

func NewTranspiler(h *types.Hierarchy) *Transpiler {
	return &Transpiler{
		h:      h,
		fset:   token.NewFileSet(),
		Logger: log.DefaultLogger.With("section", "backend"),
	}
}

// TranspileFile returns a Go file of package pkg declaring the hierarchy
// and a dispatch function for each of switches
func (tp *Transpiler) TranspileFile(pkg string, switches ...Switch) (*goast.File, error) {
	decls, err := tp.preludeDecls()
	if err != nil {
		return nil, err
	}
	hierarchy, err := tp.transpileHierarchy()
	if err != nil {
		return nil, err
	}
	decls = append(decls, hierarchy...)

	for _, s := range switches {
		fn, err := tp.transpileSwitch(s)
		if err != nil {
			return nil, err
		}
		decls = append(decls, fn)
	}
	return &goast.File{
		Name:      goast.NewIdent(pkg),
		GoVersion: goVersion,
		Decls:     decls,
	}, nil
}

// Format renders f as gofmt-ed Go source
func (tp *Transpiler) Format(f *goast.File) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := format.Node(buf, tp.fset, f); err != nil {
		return nil, errors.Wrap(err, "formatting generated code")
	}
	return buf.Bytes(), nil
}

// Generate is TranspileFile followed by Format
func Generate(h *types.Hierarchy, pkg string, switches ...Switch) ([]byte, error) {
	tp := NewTranspiler(h)
	f, err := tp.TranspileFile(pkg, switches...)
	if err != nil {
		return nil, err
	}
	return tp.Format(f)
}
