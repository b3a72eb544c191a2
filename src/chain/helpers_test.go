package chain

import (
	"bytes"
	"errors"
	"testing"
)

// testSigner "signs" by prefixing the canonical transaction bytes with the
// identity. It is enough to tell valid from forged signatures.
type testSigner struct {
	identity string
}

func (s testSigner) Sign(sender, recipient string, amount float64) ([]byte, error) {
	return append([]byte(s.identity+":"), TransactionBytes(sender, recipient, amount)...), nil
}

func (s testSigner) Verify(identity string, signature []byte, sender, recipient string, amount float64) bool {
	want := append([]byte(identity+":"), TransactionBytes(sender, recipient, amount)...)
	return bytes.Equal(signature, want)
}

func sign(t *testing.T, sender, recipient string, amount float64) []byte {
	t.Helper()
	sig, err := testSigner{identity: sender}.Sign(sender, recipient, amount)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return sig
}

// memStore records saves and replays a fixed state on load.
type memStore struct {
	state   State
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load() (State, error) {
	if m.loadErr != nil {
		return State{}, m.loadErr
	}
	return m.state, nil
}

func (m *memStore) Save(state State) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = state
	return nil
}

var errDisk = errors.New("disk unavailable")

const testDifficulty = 2

func newTestLedger(t *testing.T, identity string) *Ledger {
	t.Helper()
	return NewLedger(Config{HostingIdentity: identity, Difficulty: testDifficulty}, testSigner{}, nil)
}

func mustMine(t *testing.T, l *Ledger) Block {
	t.Helper()
	b, err := l.MineBlock()
	if err != nil {
		t.Fatalf("MineBlock() failed: %v", err)
	}
	return b
}

func mustSubmit(t *testing.T, l *Ledger, sender, recipient string, amount float64) {
	t.Helper()
	if err := l.SubmitTransaction(sender, recipient, sign(t, sender, recipient, amount), amount); err != nil {
		t.Fatalf("SubmitTransaction(%s, %s, %.2f) failed: %v", sender, recipient, amount, err)
	}
}
