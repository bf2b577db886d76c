// Command voxscribe serves the transcription page or transcribes a single
// file from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/voxscribe/version"
)

const usage = `usage: voxscribe <command> [flags]

commands:
  serve        run the web server
  transcribe   transcribe one audio file
  version      print the build version
`

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "voxscribe:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}
	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:])
	case "transcribe":
		return runTranscribe(ctx, args[1:])
	case "version":
		fmt.Println(version.GetShortVersion())
		return nil
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}
