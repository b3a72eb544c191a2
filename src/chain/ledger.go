package chain

import (
	"fmt"
	"sort"
	"sync"
	"time"

	logs "github.com/danmuck/smplog"
)

// Config controls a Ledger instance.
type Config struct {
	HostingIdentity string // credited with mining rewards
	Difficulty      int    // leading '0' hex digits required of a proof
}

// DefaultConfig returns a Config for identity at DefaultDifficulty.
func DefaultConfig(identity string) Config {
	return Config{
		HostingIdentity: identity,
		Difficulty:      DefaultDifficulty,
	}
}

// Ledger owns the mined chain and the pending queue. All methods are safe
// for concurrent use; mutations are serialized behind a single lock.
type Ledger struct {
	lock sync.RWMutex

	chain           []Block
	pending         []Transaction
	hostingIdentity string
	difficulty      int

	verifier Verifier
	store    Store
	now      func() time.Time
}

// NewLedger builds a ledger and loads any previously saved state from store.
// A nil store keeps the ledger in memory only. A failed or empty load starts
// from the genesis block.
func NewLedger(cfg Config, signatures SignatureVerifier, store Store) *Ledger {
	if cfg.Difficulty < 0 {
		cfg.Difficulty = 0
	}
	l := &Ledger{
		hostingIdentity: cfg.HostingIdentity,
		difficulty:      cfg.Difficulty,
		verifier:        NewVerifier(signatures),
		store:           store,
		now:             time.Now,
	}
	l.load()
	return l
}

func (l *Ledger) load() {
	l.chain = []Block{GenesisBlock()}
	l.pending = []Transaction{}
	if l.store == nil {
		return
	}

	state, err := l.store.Load()
	if err != nil {
		logs.Warnf("ledger load failed, starting from genesis: %v", err)
		return
	}
	if len(state.Chain) == 0 {
		logs.Debugf("ledger load: no saved chain, starting from genesis")
		return
	}

	l.chain = cloneBlocks(state.Chain)
	l.pending = cloneTransactions(state.Pending)
	logs.Infof("ledger loaded: %d block(s), %d pending", len(l.chain), len(l.pending))
}

// save persists current state. Failures are logged only: the in-memory
// ledger stays authoritative.
func (l *Ledger) save() {
	if l.store == nil {
		return
	}
	state := State{
		Chain:   cloneBlocks(l.chain),
		Pending: cloneTransactions(l.pending),
	}
	if err := l.store.Save(state); err != nil {
		logs.Errorf(err, "saving ledger failed")
	}
}

// SubmitTransaction validates and queues a signed transfer. It returns
// ErrNegativeAmount, ErrInvalidAmount, ErrReservedSender,
// ErrInvalidSignature or ErrInsufficientFunds without touching state when
// the transfer is rejected.
//
// Funds are checked against the chain plus the current pending queue, one
// submission at a time. Two queued transfers can therefore jointly overdraw
// a sender until the next block is mined.
func (l *Ledger) SubmitTransaction(sender, recipient string, signature []byte, amount float64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	tx := Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Signature: append([]byte(nil), signature...),
	}

	if tx.Amount < 0 {
		return fmt.Errorf("%w: %.2f", ErrNegativeAmount, tx.Amount)
	}
	if !ValidAmount(tx.Amount) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, tx.Amount)
	}
	if tx.IsReward() {
		return fmt.Errorf("%w: %s", ErrReservedSender, tx.Sender)
	}
	if !l.verifier.VerifyTransaction(tx, l.balanceLocked, false) {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, tx)
	}
	if !l.verifier.VerifyTransaction(tx, l.balanceLocked, true) {
		return fmt.Errorf("%w: %s has %.2f", ErrInsufficientFunds, sender, l.balanceLocked(sender))
	}

	l.pending = append(l.pending, tx)
	logs.Debugf("SubmitTransaction(%s): queued, %d pending", tx, len(l.pending))
	l.save()
	return nil
}

// MineBlock runs the proof-of-work over the pending queue, appends a block
// holding the queue plus the mining reward, and clears the queue.
func (l *Ledger) MineBlock() (Block, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.hostingIdentity == "" {
		return Block{}, ErrNoHostingIdentity
	}

	// amounts and signatures only: balances inside one batch are not re-checked
	for i, tx := range l.pending {
		if tx.IsReward() || !l.verifier.VerifyTransaction(tx, l.balanceLocked, false) {
			return Block{}, fmt.Errorf("%w: index %d (%s)", ErrInvalidPending, i, tx)
		}
	}

	last := l.chain[len(l.chain)-1]
	previousHash := HashBlock(last)

	start := l.now()
	nonce := FindNonce(l.pending, previousHash, l.difficulty)
	logs.Debugf("MineBlock(): nonce %d found in %s", nonce, l.now().Sub(start))

	reward := Transaction{
		Sender:    MiningSender,
		Recipient: l.hostingIdentity,
		Amount:    MiningReward,
	}
	txs := cloneTransactions(l.pending)
	txs = append(txs, reward)

	block := Block{
		Depth:        uint64(len(l.chain)),
		PreviousHash: previousHash,
		Transactions: txs,
		Nonce:        nonce,
		Timestamp:    l.now().UnixNano(),
	}
	l.chain = append(l.chain, block)
	l.pending = []Transaction{}
	logs.Infof("mined block %d with %d transaction(s)", block.Depth, len(block.Transactions))

	l.save()
	return block.Clone(), nil
}

func (l *Ledger) balanceLocked(identity string) float64 {
	var received, sent float64
	tally := func(tx Transaction) {
		if tx.Recipient == identity {
			received += tx.Amount
		}
		if tx.Sender == identity {
			sent += tx.Amount
		}
	}
	for _, b := range l.chain {
		for _, tx := range b.Transactions {
			tally(tx)
		}
	}
	for _, tx := range l.pending {
		tally(tx)
	}
	return received - sent
}

// Balance replays the chain and the pending queue for identity. The result
// is not clamped at zero.
func (l *Ledger) Balance(identity string) float64 {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.balanceLocked(identity)
}

// HostingBalance is Balance of the hosting identity.
func (l *Ledger) HostingBalance() float64 {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.balanceLocked(l.hostingIdentity)
}

// Chain returns a deep copy of the mined blocks.
func (l *Ledger) Chain() []Block {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return cloneBlocks(l.chain)
}

// Pending returns a copy of the queued transactions.
func (l *Ledger) Pending() []Transaction {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return cloneTransactions(l.pending)
}

// LastBlock returns a copy of the newest block.
func (l *Ledger) LastBlock() Block {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.chain[len(l.chain)-1].Clone()
}

// HostingIdentity is the identity credited with mining rewards.
func (l *Ledger) HostingIdentity() string {
	return l.hostingIdentity
}

// Difficulty is the number of leading '0' hex digits a proof needs.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// Participants returns every identity that appears on chain or in the
// pending queue, sorted. The mining sender is left out.
func (l *Ledger) Participants() []string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	seen := make(map[string]struct{})
	add := func(tx Transaction) {
		if !tx.IsReward() {
			seen[tx.Sender] = struct{}{}
		}
		seen[tx.Recipient] = struct{}{}
	}
	for _, b := range l.chain {
		for _, tx := range b.Transactions {
			add(tx)
		}
	}
	for _, tx := range l.pending {
		add(tx)
	}
	if l.hostingIdentity != "" {
		seen[l.hostingIdentity] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// VerifyChain re-validates the owned chain.
func (l *Ledger) VerifyChain() error {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.verifier.ChainError(l.chain, l.difficulty)
}

// VerifyPending re-checks the signatures of every pending transaction.
func (l *Ledger) VerifyPending() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.verifier.VerifyTransactions(l.pending, l.balanceLocked)
}

// Verifier returns the checker the ledger validates with.
func (l *Ledger) Verifier() Verifier {
	return l.verifier
}
