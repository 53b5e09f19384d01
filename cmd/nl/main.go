// Command nl numbers the lines of files.
package main

import (
	"context"
	"fmt"
	"os"

	coreutils "github.com/cjneidhart/coreutils"
	_ "github.com/cjneidhart/coreutils/nl"
)

func main() {
	log, err := coreutils.NewLogger(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nl: %v\n", err)
		os.Exit(1)
	}
	err = coreutils.Run(coreutils.OSContext(context.Background(), log), "nl", os.Args[1:]...)
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
