// Command unveil turns a directory of markdown slides into a static HTML
// presentation and serves it with live reload.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/unveil/unveil/cmd/unveil/commands"
)

const version = "0.1.0-dev"

func main() {
	// Only fails on an invalid GOMAXPROCS, runtime defaults apply then
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "init":
		err = commands.InitCommand(args)
	case "build":
		err = commands.BuildCommand(args)
	case "serve":
		err = commands.ServeCommand(args)
	case "add":
		err = commands.AddCommand(args)
	case "clean":
		err = commands.CleanCommand(args)
	case "version":
		fmt.Printf("unveil version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("unveil - A markdown presentation generator")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  unveil init [PROJECT_NAME]   Create a presentation project (default name: unveil)")
	fmt.Println("  unveil build                 Build the static site into public/")
	fmt.Println("  unveil serve [flags]         Serve the presentation with live reload")
	fmt.Println("  unveil add SLIDE_NAME        Add a markdown slide to the presentation")
	fmt.Println("  unveil clean                 Remove the public/ directory")
	fmt.Println("  unveil version               Show version")
	fmt.Println("  unveil help                  Show this help")
	fmt.Println()
	fmt.Println("Serve flags:")
	fmt.Println("  -H, --hostname string   Hostname to serve on (default localhost)")
	fmt.Println("  -p, --http-port int     HTTP port (default 7878)")
	fmt.Println("  -w, --ws-port int       Live-reload socket port (default 3000)")
	fmt.Println("      --no-open           Do not open a browser")
	fmt.Println()
	fmt.Println("Every command accepts -C, --dir to run in another project directory.")
}
