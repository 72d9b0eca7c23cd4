package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hmmelton/bytechef/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password, creates the account and seeds
// the profile in both stores. The coordinator picks the new session up and
// starts background sync.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	displayName, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}

	session, err := a.authManager.Register(ctx, email, string(password))
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	profile := &models.User{ID: session.UID, Email: email, DisplayName: displayName}
	if err := a.users.Create(ctx, profile); err != nil {
		log.Printf("Profile setup unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and authenticates against the backend. On
// success the cached profile is refreshed so reads work offline afterwards.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	session, err := a.authManager.Login(ctx, email, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}
	log.Printf("Login successful")
	a.setMode(ModeOnline)

	if err := a.users.ForceRefresh(ctx, session.UID); err != nil {
		log.Printf("Profile refresh failed: %s", err.Error())
	}
	return nil
}

// Logout clears the cached account data and ends the session. The
// coordinator sees the transition and stops background sync.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.ClearUser(ctx); err != nil {
		return err
	}
	a.authManager.Logout(ctx)
	return nil
}
