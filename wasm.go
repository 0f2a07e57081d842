//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/recpat/fixture"
)

func main() {
	js.Global().Set("CheckFixture", fixture.CheckFixture)
	js.Global().Set("GenerateDispatch", fixture.GenerateDispatch)
	js.Global().Set("InterpretGo", fixture.InterpretGo)

	// wait indefinitely so that Go does not terminate execution
	// and the function remains available
	<-make(chan struct{})
}
