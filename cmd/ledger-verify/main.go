package main

import (
	"flag"
	"os"

	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/platform/config"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/tools/ledgerverify"
)

func main() {
	cfg, err := ledgerverify.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := ledgerverify.Run(cfg, os.Stdout); err != nil {
		config.Exitf("verify ledgers: %v", err)
	}
}
