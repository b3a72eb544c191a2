package chain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeAmount    = errors.New("negative amount")
	ErrInvalidAmount     = errors.New("amount is not a finite number")
	ErrReservedSender    = errors.New("sender is reserved for mining rewards")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoHostingIdentity = errors.New("no hosting identity")
	ErrInvalidPending    = errors.New("invalid transaction in pending queue")
	ErrEmptyChain        = errors.New("empty chain")
)

// Verifier holds no ledger state; every check works on the values passed in.
type Verifier struct {
	signatures SignatureVerifier
}

// ValidAmount reports whether amount is finite and not negative.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

func NewVerifier(signatures SignatureVerifier) Verifier {
	return Verifier{signatures: signatures}
}

// ChainError walks the chain and describes the first block that breaks the
// hash link or the proof-of-work. The genesis block is accepted as is.
func (v Verifier) ChainError(blocks []Block, difficulty int) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}
	for i := 1; i < len(blocks); i++ {
		current := blocks[i]
		expected := HashBlock(blocks[i-1])
		if current.PreviousHash != expected {
			return fmt.Errorf("block %d invalid: previous hash %q, want %q", i, current.PreviousHash, expected)
		}
		if current.Depth != uint64(i) {
			return fmt.Errorf("block %d invalid: depth %d", i, current.Depth)
		}
		if len(current.Transactions) == 0 {
			return fmt.Errorf("block %d invalid: missing reward transaction", i)
		}

		// the reward is appended after the nonce is found
		txs := current.Transactions[:len(current.Transactions)-1]
		for j, tx := range current.Transactions {
			if !ValidAmount(tx.Amount) {
				return fmt.Errorf("block %d invalid: transaction %d amount %v", i, j, tx.Amount)
			}
		}
		for j, tx := range txs {
			if tx.IsReward() {
				return fmt.Errorf("block %d invalid: reward transaction at index %d", i, j)
			}
		}
		reward := current.Transactions[len(current.Transactions)-1]
		if !reward.IsReward() || reward.Amount != MiningReward {
			return fmt.Errorf("block %d invalid: bad reward transaction %s", i, reward)
		}
		if !ValidNonce(txs, current.PreviousHash, current.Nonce, difficulty) {
			return fmt.Errorf("block %d invalid: nonce %d fails difficulty %d", i, current.Nonce, difficulty)
		}
	}
	return nil
}

func (v Verifier) VerifyChain(blocks []Block, difficulty int) bool {
	return v.ChainError(blocks, difficulty) == nil
}

func (v Verifier) verifySignature(tx Transaction) bool {
	if tx.IsReward() {
		return true
	}
	if v.signatures == nil || len(tx.Signature) == 0 {
		return false
	}
	return v.signatures.Verify(tx.Sender, tx.Signature, tx.Sender, tx.Recipient, tx.Amount)
}

// VerifyTransaction checks the amount and signature of tx and, when
// checkFunds is set, that balance(sender) covers the amount.
func (v Verifier) VerifyTransaction(tx Transaction, balance BalanceFunc, checkFunds bool) bool {
	if !ValidAmount(tx.Amount) {
		return false
	}
	if checkFunds && balance(tx.Sender) < tx.Amount {
		return false
	}
	return v.verifySignature(tx)
}

// VerifyTransactions is a signature-only pass over a pending queue.
func (v Verifier) VerifyTransactions(pending []Transaction, balance BalanceFunc) bool {
	for _, tx := range pending {
		if !v.VerifyTransaction(tx, balance, false) {
			return false
		}
	}
	return true
}
