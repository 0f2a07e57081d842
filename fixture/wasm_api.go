//go:build js && wasm

package fixture

import (
	"bytes"
	"context"
	"fmt"
	"go/build"
	"syscall/js"

	"github.com/pkg/errors"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// CheckFixture analyzes the fixture document passed as first argument
// and returns the summary of every switch, diagnostics included
func CheckFixture(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "analysis panicked: " + fmt.Sprint(r)
		}
	}()

	f, err := Parse("fixture.yaml", []byte(args[0].String()))
	if err != nil {
		return fmt.Sprintf("the fixture could not be loaded:\n\n%s", err)
	}
	results, err := Run(context.Background(), f, 1)
	if err != nil {
		return fmt.Sprintf("the analysis encountered a failure:\n\n%s", err)
	}
	out := bytes.NewBuffer(nil)
	if err := f.Format(out, results); err != nil {
		return fmt.Sprintf("the analysis encountered a failure:\n\n%s", err)
	}
	return out.String()
}

// GenerateDispatch analyzes the fixture document passed as first argument
// and returns its generated Go dispatch code.
//
// output: { error: string } | { summary: string, goOutput: string }
func GenerateDispatch(_ js.Value, args []js.Value) (ret any) {
	errorObj := func(err string) any {
		return js.ValueOf(map[string]any{
			"error": err,
		})
	}
	defer func() {
		if r := recover(); r != nil {
			ret = errorObj("code generation panicked: " + fmt.Sprint(r))
		}
	}()

	f, err := Parse("fixture.yaml", []byte(args[0].String()))
	if err != nil {
		return errorObj(fmt.Sprintf("the fixture could not be loaded:\n\n%s", err))
	}
	results, err := Run(context.Background(), f, 1)
	if err != nil {
		return errorObj(fmt.Sprintf("the analysis encountered a failure:\n\n%s", err))
	}
	summary := bytes.NewBuffer(nil)
	_ = f.Format(summary, results)
	if HasErrors(results) {
		return errorObj(summary.String())
	}

	src, err := f.Generate("main", results)
	if err != nil {
		return errorObj(fmt.Sprintf("code generation encountered a failure:\n%s", err))
	}
	return js.ValueOf(map[string]any{
		"summary":  summary.String(),
		"goOutput": string(src),
	})
}

// interpretGo takes a Go program as a string and returns the stdout, if any
func interpretGo(_ js.Value, args []js.Value) (ret any, err error) {
	if len(args) != 1 {
		return nil, errors.Errorf("expected 1 argument, got %d", len(args))
	}
	goSource := args[0].String()
	stdout := bytes.NewBuffer(nil)

	i := interp.New(interp.Options{GoPath: build.Default.GOPATH, Stdout: stdout, Stderr: stdout})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, errors.Wrap(err, "error loading Go interpreter")
	}

	prog, err := i.Compile(goSource)
	if err != nil {
		return nil, errors.Wrap(err, "error during evaluation")
	}
	if _, err := i.Execute(prog); err != nil {
		return nil, errors.Wrap(err, "error during execution")
	}
	return stdout.String(), nil
}

// asPromise wraps a JS-API function that also returns an error into one
// returning a promise, which rejects with that error
func asPromise(function func(js.Value, []js.Value) (any, error)) any {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		handler := js.FuncOf(func(_ js.Value, promiseArgs []js.Value) any {
			resolve := promiseArgs[0]
			reject := promiseArgs[1]

			go func() {
				defer func() {
					if r := recover(); r != nil {
						errorConstructor := js.Global().Get("Error")
						reject.Invoke(errorConstructor.New(fmt.Sprintf("%s", r)))
					}
				}()

				data, err := function(this, args)
				if err != nil {
					errorConstructor := js.Global().Get("Error")
					reject.Invoke(errorConstructor.New(err.Error()))
				} else {
					resolve.Invoke(js.ValueOf(data))
				}
			}()

			return nil
		})
		promiseConstructor := js.Global().Get("Promise")
		return promiseConstructor.New(handler)
	})
}

var InterpretGo = asPromise(interpretGo)
