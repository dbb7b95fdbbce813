package main

import (
	"context"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/francemazzi/cards-against-humanity/internal/credential"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
)

// ValidateKeyCmd checks a hosted-backend key without starting the server.
type ValidateKeyCmd struct {
	Key        string `kong:"arg,optional,help='API key to validate (defaults to $OPENAI_API_KEY)'"`
	CheckLocal bool   `kong:"help='Also probe the local fallback backend'"`
	LocalURL   string `kong:"help='Local backend base URL'"`
}

func (c *ValidateKeyCmd) Run() error {
	key := c.Key
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return fmt.Errorf("no key given and OPENAI_API_KEY is not set")
	}

	logger := charmlog.New(os.Stderr)
	client := llm.NewClient(llm.Config{LocalBaseURL: c.LocalURL}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if !client.ValidateKey(ctx, key) {
		return fmt.Errorf("key ...%s was rejected by the hosted backend", credential.Last4(key))
	}
	fmt.Printf("Key ...%s is valid\n", credential.Last4(key))

	if c.CheckLocal {
		if client.CheckLocalHealth(ctx) {
			fmt.Println("Local backend is reachable")
		} else {
			fmt.Println("Local backend is unreachable")
		}
	}
	return nil
}
