package main

import (
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
