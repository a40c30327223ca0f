// Package main starts the studyhall backend and handles termination.
//
// The process serves the course and enrollment JSON API, the admin event
// stream, and the course chat websocket from a single HTTP listener.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	studyhallcmd "github.com/studyhall/studyhall/internal/cmd/studyhall"
)

func main() {
	cfg, err := studyhallcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STUDYHALL] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := studyhallcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
