package main

import (
	"fmt"
	"os"

	"chronos/internal/ai"
	"chronos/internal/api"
	"chronos/internal/config"
	"chronos/internal/session"
	"chronos/internal/store"
	"chronos/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	sessions, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		fmt.Printf("failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer sessions.Close()

	sess, err := sessions.Load()
	if err != nil {
		fmt.Printf("failed to restore session: %v\n", err)
		os.Exit(1)
	}
	if !sess.Authenticated() {
		fmt.Println("no credential found: sign in with your identity provider and store")
		fmt.Printf("the issued token under %q in %s\n", session.KeyToken, cfg.SessionDBPath)
		os.Exit(1)
	}

	client := api.NewClient(cfg.BaseURL, sess.Token)
	drafter := ai.NewClient(cfg.AIEndpoint)
	st := store.New(client, drafter)

	if err := ui.Run(st, cfg, sess.Email); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
