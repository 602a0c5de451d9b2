// Command ws_chat is a terminal client for a quack room. It registers a
// throwaway user, joins (or creates) a room, and mirrors the peer's
// typing live.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/quacklabs/quack/pkg/protocol"
	"github.com/quacklabs/quack/pkg/roomclient"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	name := flag.String("name", "cli-duck", "display name")
	room := flag.String("room", "", "room id to join (empty creates a new room)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := roomclient.NewRestClient(*baseURL)
	account, err := rest.Register(ctx, *name)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	roomID := *room
	if roomID == "" {
		roomID, err = rest.CreateRoom(ctx)
		if err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		fmt.Printf("Created room %s\n", roomID)
	}

	cfg := roomclient.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.SessionToken = account.SessionToken

	client := roomclient.NewClient(cfg, account.Profile)
	client.OnPeerJoined(func(p protocol.Profile) {
		fmt.Printf("* %s joined\n", p.Name)
	})
	client.OnPeerUpdated(func(p protocol.Profile) {
		fmt.Printf("* peer is now %s\n", p.Name)
	})
	client.OnPeerLeft(func() {
		fmt.Println("* peer left")
	})
	client.OnPeerMessage(func(content string, _ roomclient.TypeDirection) {
		fmt.Printf("> %s\n", content)
	})
	client.OnPing(func() {
		fmt.Println("* ping!")
	})
	client.OnReaction(func(r string) {
		fmt.Printf("* reaction %s\n", r)
	})
	client.OnError(func(err error) {
		log.Printf("channel error: %v", err)
	})

	if err := client.Connect(ctx, roomID); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	fmt.Printf("Connected to %s as %s\n", roomID, account.Profile.Name)
	fmt.Println("Type and press Enter to sync. /ping, /react <emoji>, /clear, Ctrl+C to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "/ping":
			err = client.Ping(ctx)
		case strings.HasPrefix(line, "/react "):
			err = client.React(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/react ")))
		case line == "/clear":
			err = client.Clear(ctx)
		default:
			err = client.SetContent(ctx, line)
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}
