package session

import (
	"testing"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
)

func TestAllowed_AnyStateAllowsNoop(t *testing.T) {
	for _, s := range []models.State{models.NotAuth, models.Auth, models.Selected, models.Logout} {
		if !Allowed(s, "NOOP") {
			t.Errorf("NOOP should be allowed in state %v", s)
		}
	}
}

func TestAllowed_LoginOnlyBeforeAuth(t *testing.T) {
	if !Allowed(models.NotAuth, "LOGIN") {
		t.Errorf("LOGIN should be allowed in NotAuth")
	}
	if Allowed(models.Auth, "LOGIN") {
		t.Errorf("LOGIN should not be allowed once authenticated")
	}
}

func TestAllowed_SelectedOnlyCommandsRejectedInAuth(t *testing.T) {
	if Allowed(models.Auth, "FETCH") {
		t.Errorf("FETCH should require a selected mailbox")
	}
	if !Allowed(models.Selected, "FETCH") {
		t.Errorf("FETCH should be allowed once selected")
	}
}

func TestAllowed_SelectedInheritsAuthCommands(t *testing.T) {
	if !Allowed(models.Selected, "LIST") {
		t.Errorf("LIST should remain allowed while selected")
	}
}

func TestAllowed_RenameReachesDispatcher(t *testing.T) {
	if !Allowed(models.Auth, "RENAME") {
		t.Errorf("RENAME should be grammatically accepted so the dispatcher can answer NO")
	}
}

func TestAllowed_LogoutStateRejectsEverythingElse(t *testing.T) {
	if Allowed(models.Logout, "FETCH") {
		t.Errorf("no command but the any-state set should be allowed once logged out")
	}
}
