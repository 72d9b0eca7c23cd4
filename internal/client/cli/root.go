package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if session := a.authManager.Current(); session != nil {
		s = session.Email + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to ByteChef CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	for {
		fmt.Printf("chef %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		if err := a.dispatch(ctx, cmd, args); err != nil {
			log.Printf("%s failed: %s", cmd, err.Error())
		}
		if cmd == "exit" || cmd == "quit" {
			return
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Println("Available commands: (l)ist [cuisine], show <id>, add, delete <id>, favorite <id>, sync, logout, exit")
		} else {
			fmt.Println("Available commands: register, login, exit")
		}

	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)

	case "add":
		return a.addRecipe(ctx)
	case "l", "list":
		cuisine := ""
		if len(args) > 0 {
			cuisine = args[0]
		}
		return a.list(ctx, cuisine)
	case "show":
		if len(args) == 0 {
			fmt.Println("Usage: show <id>")
			return nil
		}
		return a.show(ctx, args[0])
	case "delete":
		if len(args) == 0 {
			fmt.Println("Usage: delete <id>")
			return nil
		}
		return a.delete(ctx, args[0])
	case "favorite":
		if len(args) == 0 {
			fmt.Println("Usage: favorite <id>")
			return nil
		}
		return a.favorite(ctx, args[0])
	case "sync":
		return a.syncNow(ctx)

	case "exit", "quit":
		fmt.Println("Bye!")

	default:
		fmt.Println("Unknown command:", cmd)
	}
	return nil
}
