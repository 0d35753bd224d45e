// Package main is the terminal board played against a running chessd.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"chessrules/internal/cli"
	"chessrules/internal/client"
	clitransport "chessrules/internal/transport/cli"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:8080", "chessd base URL")
		timeout = flag.Duration("timeout", 10*time.Second, "Request timeout")
		history = flag.String("history", ".chess_client_history", "Readline history file")
		theme   = flag.String("theme", "off", "Board colour theme (off, brown, green, gray)")
	)
	flag.Parse()

	api := client.New(*server, client.WithTimeout(*timeout))

	ctx := context.Background()
	health, err := api.Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server %s unreachable: %v\n", *server, err)
		os.Exit(1)
	}

	rl, err := cli.NewReadline(*history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	view := cli.New(rl, os.Stdout, cli.IsTerminal(os.Stdout))
	defer view.Close()

	if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
		view.ShowError(err)
	}

	view.ShowWelcome()
	view.ShowMessage(fmt.Sprintf("Connected to %s (engine: %v)", *server, health["engine"]))
	clitransport.New(ctx, api, view).Run()
}
