package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/hmmelton/bytechef/internal/client/localstore"
	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/client/remote"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/logging"
)

const usersSyncJob = "users-sync"

// Users is the synchronized user-profile repository.
type Users struct {
	local    *localstore.Store
	remote   remote.Client
	sessions SessionReader
	log      logging.Logger
	sync     *syncLifecycle
}

func NewUsers(local *localstore.Store, rc remote.Client, jobs Jobs, sessions SessionReader, interval time.Duration, log logging.Logger) *Users {
	u := &Users{
		local:    local,
		remote:   rc,
		sessions: sessions,
		log:      log,
	}
	u.sync = &syncLifecycle{
		name:     usersSyncJob,
		interval: interval,
		jobs:     jobs,
		sessions: sessions,
		log:      log,
		refresh:  u.ForceRefresh,
	}
	return u
}

// Create writes the profile to the backend first and mirrors it into the
// cache. If caching fails the backend copy is deleted again so the two
// stores cannot disagree about the profile existing.
func (u *Users) Create(ctx context.Context, user *models.User) error {
	if err := u.remote.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating user upstream: %w", err)
	}
	if err := u.local.UpsertUser(ctx, user); err != nil {
		if cerr := u.remote.DeleteUser(ctx, user.ID); cerr != nil {
			u.log.Error(ctx, "compensating delete failed", "uid", user.ID, "error", cerr)
		}
		return fmt.Errorf("caching user: %w", err)
	}
	return nil
}

// Current reads the cached profile. A nil user with a nil error means nobody
// is cached locally.
func (u *Users) Current(ctx context.Context) (*models.User, error) {
	return u.local.CurrentUser(ctx)
}

// Update patches the signed-in user's profile, backend first. The uid must
// match both the session and the locally cached current user; a mismatch
// fails before any remote call. A cache failure after the backend accepted
// the patch is reported as an error but never rolled back upstream: the next
// refresh repairs the cache.
func (u *Users) Update(ctx context.Context, uid string, patch models.UserPatch) error {
	session := u.sessions.Current()
	if session == nil {
		return common.ErrorUnauthorized
	}
	if session.UID != uid {
		return common.ErrUserMismatch
	}
	cached, err := u.local.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("reading cached user: %w", err)
	}
	if cached != nil && cached.ID != uid {
		return common.ErrUserMismatch
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := u.remote.UpdateUser(ctx, uid, patch); err != nil {
		return fmt.Errorf("updating user upstream: %w", err)
	}

	if cached == nil {
		u.log.Warn(ctx, "cache update skipped, no cached user", "uid", uid)
		return nil
	}
	patch.ApplyTo(cached)
	if err := u.local.UpsertUser(ctx, cached); err != nil {
		return fmt.Errorf("caching user update: %w", err)
	}
	return nil
}

// Delete removes the profile from both stores, cache first. A missing cache
// row is fine; the backend delete still proceeds.
func (u *Users) Delete(ctx context.Context, uid string) error {
	if err := u.local.DeleteUser(ctx, uid); err != nil {
		u.log.Warn(ctx, "cache delete failed", "uid", uid, "error", err)
	}
	if err := u.remote.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("deleting user upstream: %w", err)
	}
	return nil
}

// Observe streams the cached profile. The first observer starts the periodic
// sync job and triggers an immediate refresh; when the last observer's
// context ends the job is cancelled.
func (u *Users) Observe(ctx context.Context) <-chan *models.User {
	in := u.local.ObserveUser(ctx)
	out := make(chan *models.User, 1)
	u.sync.observerArrived()
	go func() {
		defer u.sync.observerLeft()
		defer close(out)
		for user := range in {
			select {
			case <-out:
			default:
			}
			out <- user
		}
	}()
	return out
}

// ForceRefresh pulls the backend profile into the cache.
func (u *Users) ForceRefresh(ctx context.Context, uid string) error {
	user, err := u.remote.FetchUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("fetching user: %w", err)
	}
	if err := u.local.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("caching user: %w", err)
	}
	return nil
}

// StartSync and StopSync let the coordinator drive sync from auth
// transitions, independent of any observers.
func (u *Users) StartSync(uid string) { u.sync.start(uid) }
func (u *Users) StopSync()            { u.sync.stop() }
