// Command logowire runs either end of the kernel/frontend console protocol.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logowire: %v\n", err)
		os.Exit(1)
	}
}
