package main

import (
	"fmt"
	"os"

	"github.com/coreyw/gitdb/env"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	root := newRootCmd(cwd, env.NewFromOs())
	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
