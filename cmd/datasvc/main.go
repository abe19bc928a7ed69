// Command datasvc sends one request through a configured connection and
// prints the JSON result, or saves it as a file.
//
//	DATASVC_BASE_PATH=https://api.example.com/v1 datasvc GET users/42
//	datasvc -m POST -a users -b '{"name":"alice"}'
//	datasvc -o ./reports/ reports/q3
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamwoolhether/datasvc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Main(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
