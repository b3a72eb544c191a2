package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/dps_ledger/cmd/internal/logcfg"
	logs "github.com/danmuck/smplog"
)

func main() {
	logs.Configure(logcfg.Load())

	cfg, err := loadRuntimeConfig(os.Args[1:], defaultRuntimeConfig)
	if err != nil {
		fmt.Printf("Error: %v\n\n", err)
		printUsage(defaultRuntimeConfig)
		os.Exit(1)
	}

	s, err := newSession(cfg)
	if err != nil {
		logs.Fatalf(err, "Failed to open ledger at %s", cfg.Store.StorageDir)
	}
	logs.Printf("Ledger ready: %d block(s), %d pending, difficulty %d.\n",
		len(s.ledger.Chain()), len(s.ledger.Pending()), s.ledger.Difficulty())

	if shouldRunInteractiveSession(cfg, os.Stdin) {
		if err := runInteractiveSession(s, os.Stdin); err != nil {
			if errors.Is(err, errChainInvalid) {
				os.Exit(1)
			}
			logs.Fatalf(err, "Interactive session failed")
		}
		logs.Println("Done!")
		return
	}

	if err := s.run(cfg.Action, getBufferedReader(os.Stdin)); err != nil {
		os.Exit(1)
	}
}

func shouldRunInteractiveSession(cfg RuntimeConfig, input io.Reader) bool {
	return !cfg.ActionProvided && isInteractiveReader(input)
}

// runInteractiveSession loops until quit or until the chain stops verifying.
func runInteractiveSession(s *session, input io.Reader) error {
	reader := getBufferedReader(input)
	for {
		action, err := promptAction(reader, s.ledger.HostingIdentity())
		if errors.Is(err, errMenuExit) {
			return nil
		}
		if err != nil {
			return err
		}

		logs.Divider(0)
		if err := s.run(action, reader); err != nil {
			return err
		}
	}
}
