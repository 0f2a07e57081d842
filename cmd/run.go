package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/cottand/recpat/fixture"
	"github.com/cottand/recpat/runtime/match"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/traefik/yaegi/interp"
)

var RunCmd = &cobra.Command{
	Use:   "run fixture.yaml [switch [input...]]",
	Short: "Interpret the generated dispatch of a fixture against its inputs",
	Long: `Generates the Go dispatch functions of a fixture and evaluates them on the
inputs of each switch. Inputs are Go expressions over the generated types,
ie &Circle{R: 2}. Inputs given as arguments replace those of the fixture.`,
	RunE:         runRun,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f, results, src, err := generate(ctx, args[0], "main")
	if err != nil {
		return err
	}

	i := interp.New(interp.Options{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
	if _, err := i.Eval(string(src)); err != nil {
		logger.Warn("generated code does not evaluate", "err", err, "src", string(src))
		return errors.Wrap(err, "could not interpret generated code")
	}

	switches := make([]fixture.Switch, 0, len(results))
	for _, r := range results {
		switches = append(switches, r.Switch)
	}
	if len(args) > 1 {
		s, ok := f.Lookup(args[1])
		if !ok {
			return errors.Errorf("no switch %s in %s", args[1], args[0])
		}
		if len(args) > 2 {
			s.Inputs = args[2:]
		}
		switches = []fixture.Switch{s}
	}

	sb := &strings.Builder{}
	for _, s := range switches {
		for _, input := range s.Inputs {
			fmt.Fprintf(sb, "%s(%s) = %s\n", s.Name, input, dispatch(i, s, input))
		}
	}
	_, err = cmd.OutOrStdout().Write([]byte(sb.String()))
	return err
}

// dispatch describes the case selected by the dispatch function of s for input
func dispatch(i *interp.Interpreter, s fixture.Switch, input string) string {
	res, err := i.Eval(fmt.Sprintf("%s(%s)", fixture.FuncName(s.Name), input))
	if err != nil {
		return "raises " + err.Error()
	}
	index := int(res.Int())
	switch index {
	case match.NullIndex:
		return "case null"
	case match.DefaultIndex:
		return "default"
	case match.NoMatchIndex:
		return "no match"
	}
	return fmt.Sprintf("#%d %v", index, s.List.Case(index))
}
