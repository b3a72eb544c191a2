package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/dps_ledger/src/chain"
	logs "github.com/danmuck/smplog"
	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

const DefaultKeyFile = "wallet.toml"

var suite suites.Suite = suites.MustFind("Ed25519")

var (
	ErrNoKeys          = errors.New("wallet has no keys")
	ErrSenderMismatch  = errors.New("sender is not the wallet identity")
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Wallet holds a schnorr key pair over Ed25519. Its identity is the hex
// encoding of the marshalled public point.
type Wallet struct {
	private kyber.Scalar
	public  kyber.Point
}

// keyFile is the TOML layout of a saved wallet.
type keyFile struct {
	PublicKey  string `toml:"public_key"`
	PrivateKey string `toml:"private_key"`
}

var (
	_ chain.Signer            = (*Wallet)(nil)
	_ chain.SignatureVerifier = Verifier{}
)

// New generates a fresh key pair.
func New() *Wallet {
	private := suite.Scalar().Pick(suite.RandomStream())
	return &Wallet{
		private: private,
		public:  suite.Point().Mul(private, nil),
	}
}

// Identity returns the public identity, or "" for a wallet without keys.
func (w *Wallet) Identity() string {
	if w == nil || w.public == nil {
		return ""
	}
	b, err := w.public.MarshalBinary()
	if err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

// Sign signs the canonical transaction bytes. Only the wallet's own
// identity may appear as sender.
func (w *Wallet) Sign(sender, recipient string, amount float64) ([]byte, error) {
	if w == nil || w.private == nil {
		return nil, ErrNoKeys
	}
	if sender != w.Identity() {
		return nil, fmt.Errorf("%w: %s", ErrSenderMismatch, sender)
	}
	sig, err := schnorr.Sign(suite, w.private, chain.TransactionBytes(sender, recipient, amount))
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return sig, nil
}

func (w *Wallet) Verify(identity string, signature []byte, sender, recipient string, amount float64) bool {
	return Verify(identity, signature, sender, recipient, amount)
}

// Verifier checks signatures without holding any keys.
type Verifier struct{}

func (Verifier) Verify(identity string, signature []byte, sender, recipient string, amount float64) bool {
	return Verify(identity, signature, sender, recipient, amount)
}

// Verify reports whether signature is identity's schnorr signature over
// (sender, recipient, amount).
func Verify(identity string, signature []byte, sender, recipient string, amount float64) bool {
	public, err := ParseIdentity(identity)
	if err != nil {
		return false
	}
	return schnorr.Verify(suite, public, chain.TransactionBytes(sender, recipient, amount), signature) == nil
}

// ParseIdentity decodes a hex identity into a public point.
func ParseIdentity(identity string) (kyber.Point, error) {
	b, err := hex.DecodeString(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	public := suite.Point()
	if err := public.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return public, nil
}

// Save writes the key pair to path with owner-only permissions.
func (w *Wallet) Save(path string) error {
	if w == nil || w.private == nil {
		return ErrNoKeys
	}
	privateBytes, err := w.private.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(keyFile{
		PublicKey:  w.Identity(),
		PrivateKey: hex.EncodeToString(privateBytes),
	}); err != nil {
		return fmt.Errorf("failed to encode key file: %w", err)
	}
	logs.Debugf("wallet saved to %s", path)
	return nil
}

// Load reads a key pair written by Save and checks that the public key
// matches the private one.
func Load(path string) (*Wallet, error) {
	var kf keyFile
	if _, err := toml.DecodeFile(path, &kf); err != nil {
		return nil, fmt.Errorf("failed to decode key file %s: %w", path, err)
	}

	privateBytes, err := hex.DecodeString(kf.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	private := suite.Scalar()
	if err := private.UnmarshalBinary(privateBytes); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	w := &Wallet{
		private: private,
		public:  suite.Point().Mul(private, nil),
	}
	if kf.PublicKey != "" && kf.PublicKey != w.Identity() {
		return nil, fmt.Errorf("key file %s: public key does not match private key", path)
	}
	logs.Debugf("wallet loaded from %s", path)
	return w, nil
}
