// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command panelctl is the operator CLI of the panel.
//
// It reads the same environment as cmd/api and acts on the same store:
//
//	panelctl migrate
//	panelctl resources
//	panelctl trash cleanup --resource products
//	panelctl versions prune
//	panelctl cache clear --resource products
//	panelctl users create --name Admin --email admin@example.com --password ... --role admin
//	panelctl token issue --user 42 --role editor --ttl 1h
//
// Scheduled maintenance (trash cleanup, version pruning) is meant to run
// from cron or a Kubernetes CronJob.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/taibuivan/panelkit/internal/platform/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	root := newRoot(config.Load, logger, os.Stdout)
	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "panelctl:", err)
		os.Exit(1)
	}
}
