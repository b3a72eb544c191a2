package wallet

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/dps_ledger/src/chain"
)

func TestSignAndVerify(t *testing.T) {
	w := New()
	other := New()
	id := w.Identity()

	sig, err := w.Sign(id, "bob", 4)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	tests := []struct {
		name      string
		identity  string
		signature []byte
		recipient string
		amount    float64
		want      bool
	}{
		{name: "valid", identity: id, signature: sig, recipient: "bob", amount: 4, want: true},
		{name: "wrong amount", identity: id, signature: sig, recipient: "bob", amount: 4.01, want: false},
		{name: "wrong recipient", identity: id, signature: sig, recipient: "carol", amount: 4, want: false},
		{name: "other identity", identity: other.Identity(), signature: sig, recipient: "bob", amount: 4, want: false},
		{name: "identity not hex", identity: "alice", signature: sig, recipient: "bob", amount: 4, want: false},
		{name: "empty signature", identity: id, signature: nil, recipient: "bob", amount: 4, want: false},
		{name: "truncated signature", identity: id, signature: sig[:len(sig)-1], recipient: "bob", amount: 4, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Verify(tc.identity, tc.signature, id, tc.recipient, tc.amount); got != tc.want {
				t.Fatalf("Verify() = %v, want %v", got, tc.want)
			}
			if got := (Verifier{}).Verify(tc.identity, tc.signature, id, tc.recipient, tc.amount); got != tc.want {
				t.Fatalf("Verifier.Verify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSignRejectsForeignSender(t *testing.T) {
	w := New()
	if _, err := w.Sign("alice", "bob", 1); !errors.Is(err, ErrSenderMismatch) {
		t.Fatalf("Sign(alice) error = %v, want %v", err, ErrSenderMismatch)
	}

	var empty Wallet
	if _, err := empty.Sign("", "bob", 1); !errors.Is(err, ErrNoKeys) {
		t.Fatalf("Sign() on empty wallet error = %v, want %v", err, ErrNoKeys)
	}
	if got := empty.Identity(); got != "" {
		t.Fatalf("Identity() on empty wallet = %q, want empty", got)
	}
}

func TestIdentitiesAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		id := New().Identity()
		if seen[id] {
			t.Fatalf("New() produced duplicate identity %s", id)
		}
		seen[id] = true
		if _, err := ParseIdentity(id); err != nil {
			t.Fatalf("ParseIdentity(%s) failed: %v", id, err)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", DefaultKeyFile)
	w := New()
	if err := w.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if got, want := info.Mode().Perm(), os.FileMode(0600); got != want {
		t.Fatalf("key file mode = %v, want %v", got, want)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got, want := loaded.Identity(), w.Identity(); got != want {
		t.Fatalf("Identity() after load = %s, want %s", got, want)
	}

	sig, err := loaded.Sign(loaded.Identity(), "bob", 2)
	if err != nil {
		t.Fatalf("Sign() after load failed: %v", err)
	}
	if !w.Verify(w.Identity(), sig, w.Identity(), "bob", 2) {
		t.Fatal("signature from loaded wallet did not verify against original identity")
	}
}

func TestLoadErrors(t *testing.T) {
	other := New()
	tests := []struct {
		name    string
		content string
	}{
		{name: "not toml", content: "= ="},
		{name: "private key not hex", content: "private_key = \"xyz\"\n"},
		{name: "private key wrong length", content: "private_key = \"abcd\"\n"},
		{name: "public key mismatch", content: "public_key = \"" + other.Identity() + "\"\nprivate_key = \"" + privateHex(t, New()) + "\"\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultKeyFile)
			if err := os.WriteFile(path, []byte(tc.content), 0600); err != nil {
				t.Fatalf("failed to seed key file: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("Load() error = nil, want error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load() on missing file error = nil, want error")
	}
}

func privateHex(t *testing.T, w *Wallet) string {
	t.Helper()
	b, err := w.private.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() failed: %v", err)
	}
	return hex.EncodeToString(b)
}

func TestLedgerWithWallets(t *testing.T) {
	host := New()
	alice := New()
	bob := New()

	l := chain.NewLedger(chain.Config{HostingIdentity: host.Identity(), Difficulty: 2}, Verifier{}, nil)

	if _, err := l.MineBlock(); err != nil {
		t.Fatalf("MineBlock() failed: %v", err)
	}

	sig, err := host.Sign(host.Identity(), alice.Identity(), 6)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if err := l.SubmitTransaction(host.Identity(), alice.Identity(), sig, 6); err != nil {
		t.Fatalf("SubmitTransaction(host -> alice) failed: %v", err)
	}

	// alice's key cannot authorise a transfer out of bob's account
	forged, err := alice.Sign(alice.Identity(), bob.Identity(), 1)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if err := l.SubmitTransaction(bob.Identity(), alice.Identity(), forged, 1); !errors.Is(err, chain.ErrInvalidSignature) {
		t.Fatalf("SubmitTransaction(forged) error = %v, want %v", err, chain.ErrInvalidSignature)
	}

	sig, err = alice.Sign(alice.Identity(), bob.Identity(), 2.5)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if err := l.SubmitTransaction(alice.Identity(), bob.Identity(), sig, 2.5); err != nil {
		t.Fatalf("SubmitTransaction(alice -> bob) failed: %v", err)
	}

	if !l.VerifyPending() {
		t.Fatal("VerifyPending() = false, want true")
	}
	if _, err := l.MineBlock(); err != nil {
		t.Fatalf("MineBlock() failed: %v", err)
	}
	if err := l.VerifyChain(); err != nil {
		t.Fatalf("VerifyChain() = %v, want nil", err)
	}

	checks := []struct {
		name string
		id   string
		want float64
	}{
		{name: "host", id: host.Identity(), want: 14},
		{name: "alice", id: alice.Identity(), want: 3.5},
		{name: "bob", id: bob.Identity(), want: 2.5},
	}
	for _, c := range checks {
		if got := l.Balance(c.id); got != c.want {
			t.Errorf("Balance(%s) = %.2f, want %.2f", c.name, got, c.want)
		}
	}
}
