package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	resolutiondcmd "github.com/pipe-works/pipeworks-mud-server-sub000/internal/cmd/resolutiond"
)

func main() {
	cfg, err := resolutiondcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[RESOLUTION] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := resolutiondcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
