package fixture

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/cottand/recpat/backend"
	"github.com/cottand/recpat/frontend"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/cottand/recpat/util"
	"golang.org/x/sync/errgroup"
)

// Result is the analysis of one switch of a fixture
type Result struct {
	Switch Switch
	Report *frontend.Report
}

// Run analyzes every switch of f, at most jobs at a time (GOMAXPROCS
// when jobs < 1). Results are in the order the switches are declared.
func Run(ctx context.Context, f *Fixture, jobs int) ([]Result, error) {
	if jobs < 1 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(f.Switches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, s := range f.Switches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Switch: s, Report: frontend.Analyze(f.Hierarchy, s.List)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// HasErrors is true when any result carries a diagnostic
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Report.Errors.HasError() {
			return true
		}
	}
	return false
}

// FuncName is the name of the Go dispatch function generated for a switch
func FuncName(switchName string) string {
	return util.Exported(switchName)
}

// Generate renders the Go dispatch code of results as package pkg
func (f *Fixture) Generate(pkg string, results []Result) ([]byte, error) {
	switches := make([]backend.Switch, 0, len(results))
	for _, r := range results {
		switches = append(switches, backend.Switch{Name: FuncName(r.Switch.Name), Report: r.Report})
	}
	return backend.Generate(f.Hierarchy, pkg, switches...)
}

// Format writes a human-readable summary of results to w
func (f *Fixture) Format(w io.Writer, results []Result) error {
	sb := &strings.Builder{}
	for _, r := range results {
		rep := r.Report
		fmt.Fprintf(sb, "%s (%v on %v, %d cases)\n", r.Switch.Name, rep.List.Form, rep.List.Selector, rep.List.Len())
		if rep.Exhaustive {
			sb.WriteString("  exhaustive\n")
		} else {
			fmt.Fprintf(sb, "  not exhaustive, missing: %s\n", strings.Join(rep.Missing, ", "))
		}
		if unreachable := rep.Unreachable(); len(unreachable) > 0 {
			fmt.Fprintf(sb, "  unreachable cases: %v\n", unreachable)
		}
		if rep.NeedsFailurePath {
			sb.WriteString("  may raise MatchException\n")
		}
		for _, e := range rep.Errors.Errors() {
			fmt.Fprintf(sb, "  %s%s\n", f.where(e), ilerr.FormatWithCode(e))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *Fixture) where(e ilerr.IleError) string {
	pos := f.Position(e.Pos())
	if !pos.IsValid() {
		return ""
	}
	return pos.String() + ": "
}
