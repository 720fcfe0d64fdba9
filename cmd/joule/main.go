// Package main provides the Joule runtime CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joule-lang/joule/array"
	"github.com/joule-lang/joule/broadcast"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Joule %s\n", version)
			return
		case "demo":
			demo()
			return
		}
	}

	fmt.Println("Joule - a Julia-subset runtime in Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Run a broadcasting demo")
	fmt.Println("")
	fmt.Println("Coming soon: repl, run")
}

func demo() {
	x, _ := array.FromFloat64([]float64{1, 2, 3}, array.Shape{3})

	out, err := broadcast.Broadcast(broadcast.Add, x, 100.0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}

	fmt.Println("x .+ 100 =", out.(*array.Array).AsFloat64())
}
