package main

import (
	"fmt"
	"os"
)

// Version and Tag are set with -ldflags at build time.
var (
	Version = "develop"
	Tag     = "0.0.1-rc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
