package main

import (
	"fmt"
	"os"

	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	code := 0
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mlbridge: %v\n", err)
		code = 1
	}
	if cr := interop.Recover(); cr != nil {
		cr.Shutdown()
	}
	os.Exit(code)
}
