package ledger

import (
	"testing"

	"github.com/google/uuid"
)

func TestAccountIDs(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	escrowID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	if got := UserAccount(userID); got != "user:11111111-2222-3333-4444-555555555555" {
		t.Errorf("UserAccount = %q", got)
	}
	if got := EscrowAccount(escrowID); got != "escrow:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee" {
		t.Errorf("EscrowAccount = %q", got)
	}
	if UserAccount(userID) == EscrowAccount(userID) {
		t.Error("user and escrow accounts must not collide for the same uuid")
	}
}
