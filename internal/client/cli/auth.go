package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = ReadLine
var getPassword = ReadSecret

func (a *App) currentSession() *models.CachedSession {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

func (a *App) isLoggedIn() bool {
	return a.currentSession() != nil
}

func (a *App) setSession(s *models.CachedSession, offline bool) {
	a.mu.Lock()
	a.session = s
	a.offlineSession = offline
	a.mu.Unlock()
	a.authenticated.Store(s != nil && !offline)
}

// expireSession keeps the operator signed in but pauses delivery after the
// server refused the token. Orders keep queueing until the next login.
func (a *App) expireSession() {
	a.mu.Lock()
	if a.session != nil {
		a.offlineSession = true
	}
	a.mu.Unlock()
	if a.authenticated.CompareAndSwap(true, false) {
		fmt.Fprintln(a.out, "\nSession expired; run 'login' to resume delivery")
	}
}

// Login prompts for credentials and signs the operator in.
//
// Online login stores the server token and kicks off a sync of whatever
// is queued. If the server cannot be reached the last cached session of
// that user is restored instead: orders can be taken and queued, but
// nothing is delivered until the operator logs in online again.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, offline, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		a.logger.Warn(ctx, "login unsuccessful", "username", userName, "error", err)
		fmt.Fprintln(a.out, "Login failed:", err)
		return err
	}

	a.setSession(s, offline)
	if offline {
		a.logger.Info(ctx, "offline login successful", "username", userName)
		fmt.Fprintf(a.out, "Server unavailable, signed in offline as %s\n", s.DisplayName)
		return nil
	}

	a.logger.Info(ctx, "login successful", "username", userName)
	fmt.Fprintf(a.out, "Signed in as %s\n", s.DisplayName)
	if a.triggerSync != nil {
		a.triggerSync()
	}
	return nil
}

// Logout forgets the in-memory session. Queued orders and the cached
// session stay on disk.
func (a *App) Logout(ctx context.Context) error {
	a.setSession(nil, false)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	a.mu.RLock()
	s, offline := a.session, a.offlineSession
	a.mu.RUnlock()

	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	kind := "online"
	if offline {
		kind = "offline (cached)"
	}
	fmt.Fprintf(a.out, "%s (%s), user id %s, session %s\n", s.DisplayName, s.Username, s.UserID, kind)
	return nil
}
