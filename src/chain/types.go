package chain

import "fmt"

const (
	MiningSender      = "MINING" // sender of the synthetic reward transaction
	MiningReward      = 10.0
	DefaultDifficulty = 4
	GenesisNonce      = 100
)

type Transaction struct {
	Sender    string
	Recipient string
	Amount    float64
	Signature []byte
}

// IsReward reports whether tx is the unsigned mining reward.
func (tx Transaction) IsReward() bool {
	return tx.Sender == MiningSender
}

func (tx Transaction) String() string {
	return fmt.Sprintf("%s -> %s: %.2f", tx.Sender, tx.Recipient, tx.Amount)
}

type Block struct {
	Depth        uint64
	PreviousHash string
	Transactions []Transaction
	Nonce        uint64
	Timestamp    int64 // unix nanoseconds
}

// GenesisBlock returns the fixed first block of every chain. Its timestamp is
// zero so the genesis hash does not change between process restarts.
func GenesisBlock() Block {
	return Block{
		Depth:        0,
		PreviousHash: "",
		Transactions: []Transaction{},
		Nonce:        GenesisNonce,
		Timestamp:    0,
	}
}

// Clone returns a deep copy of the block, including transaction signatures.
func (b Block) Clone() Block {
	out := b
	out.Transactions = cloneTransactions(b.Transactions)
	return out
}

func cloneTransactions(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx
		if tx.Signature != nil {
			out[i].Signature = append([]byte(nil), tx.Signature...)
		}
	}
	return out
}

func cloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// State is the persisted form of a ledger.
type State struct {
	Chain   []Block
	Pending []Transaction
}

// SignatureVerifier checks a signature over (sender, recipient, amount)
// against the public identity that supposedly produced it.
type SignatureVerifier interface {
	Verify(identity string, signature []byte, sender, recipient string, amount float64) bool
}

// Signer produces signatures that a SignatureVerifier accepts.
type Signer interface {
	SignatureVerifier
	Sign(sender, recipient string, amount float64) ([]byte, error)
}

// Store loads and saves ledger state. Load is called once when a Ledger is
// built, Save after every successful mutation.
type Store interface {
	Load() (State, error)
	Save(state State) error
}

// BalanceFunc looks up the current balance of an identity.
type BalanceFunc func(identity string) float64
