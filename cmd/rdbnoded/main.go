package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rdbshard/core/cmd/rdbnoded/noded"
	"github.com/rdbshard/core/config"
	"github.com/rdbshard/core/rdblog"
)

func main() {
	configPath := flag.String("config", "/etc/rdbshard/node.toml", "path to a TOML node configuration file")
	join := flag.String("join", "", "comma separated addresses of existing cluster members to join")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("rdbnoded: loading config: %v", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("rdbnoded: %v", err)
	}
	if cfg.Name == "" {
		cfg.Name = hostname
	}

	node, err := noded.New(cfg)
	if err != nil {
		log.Fatalf("rdbnoded: %v", err)
	}
	defer node.Close()

	existing := splitNonEmpty(*join)
	if len(existing) == 0 {
		existing = splitNonEmpty(strings.Join(cfg.Join, ","))
	}
	if len(existing) > 0 {
		if err := node.Join(existing); err != nil {
			rdblog.For("noded").Errorf("failed to join %v: %v", existing, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := node.Run(ctx); err != nil {
		log.Fatalf("rdbnoded: %v", err)
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
