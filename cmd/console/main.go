// Terminal chat client for the banking assistant's console channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/websocket"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("CONSOLE_URL")
	if defaultURL == "" {
		defaultURL = "ws://localhost:8080/ws/console"
	}
	serverURL := flag.String("url", defaultURL, "console websocket URL")
	user := flag.String("user", os.Getenv("USER"), "user id to connect as")
	flag.Parse()

	u, err := url.Parse(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid URL %q: %v\n", *serverURL, err)
		os.Exit(1)
	}
	q := u.Query()
	if *user != "" {
		q.Set("user", *user)
	}
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	defer conn.Close(websocket.StatusNormalClosure, "client exiting")

	p := tea.NewProgram(newModel(ctx, conn), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
