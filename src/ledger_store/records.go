package ledger_store

import (
	"encoding/hex"
	"fmt"

	"github.com/danmuck/dps_ledger/src/chain"
	"github.com/segmentio/ksuid"
)

const formatVersion = 1

// ledgerFile is the TOML layout of a saved ledger.
type ledgerFile struct {
	Format  int                 `toml:"format"`
	SaveID  string              `toml:"save_id"` // ksuid, sortable by save time
	SavedAt int64               `toml:"saved_at"`
	Blocks  []blockRecord       `toml:"blocks"`
	Pending []transactionRecord `toml:"pending"`
}

type blockRecord struct {
	Depth        uint64              `toml:"depth"`
	PreviousHash string              `toml:"previous_hash"`
	Nonce        uint64              `toml:"nonce"`
	Timestamp    int64               `toml:"timestamp"`
	Transactions []transactionRecord `toml:"transactions"`
}

type transactionRecord struct {
	Sender    string  `toml:"sender"`
	Recipient string  `toml:"recipient"`
	Amount    float64 `toml:"amount"`
	Signature string  `toml:"signature"` // hex, empty for rewards
}

func toTransactionRecords(txs []chain.Transaction) []transactionRecord {
	out := make([]transactionRecord, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionRecord{
			Sender:    tx.Sender,
			Recipient: tx.Recipient,
			Amount:    tx.Amount,
			Signature: hex.EncodeToString(tx.Signature),
		})
	}
	return out
}

func fromTransactionRecords(records []transactionRecord) ([]chain.Transaction, error) {
	out := make([]chain.Transaction, 0, len(records))
	for i, rec := range records {
		var sig []byte
		if rec.Signature != "" {
			decoded, err := hex.DecodeString(rec.Signature)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: invalid signature encoding: %w", i, err)
			}
			sig = decoded
		}
		out = append(out, chain.Transaction{
			Sender:    rec.Sender,
			Recipient: rec.Recipient,
			Amount:    rec.Amount,
			Signature: sig,
		})
	}
	return out, nil
}

func toLedgerFile(state chain.State, saveID ksuid.KSUID) ledgerFile {
	blocks := make([]blockRecord, 0, len(state.Chain))
	for _, b := range state.Chain {
		blocks = append(blocks, blockRecord{
			Depth:        b.Depth,
			PreviousHash: b.PreviousHash,
			Nonce:        b.Nonce,
			Timestamp:    b.Timestamp,
			Transactions: toTransactionRecords(b.Transactions),
		})
	}
	return ledgerFile{
		Format:  formatVersion,
		SaveID:  saveID.String(),
		SavedAt: saveID.Time().UnixNano(),
		Blocks:  blocks,
		Pending: toTransactionRecords(state.Pending),
	}
}

func (f ledgerFile) state() (chain.State, error) {
	if f.Format != formatVersion {
		return chain.State{}, fmt.Errorf("unsupported ledger format %d", f.Format)
	}

	blocks := make([]chain.Block, 0, len(f.Blocks))
	for _, rec := range f.Blocks {
		txs, err := fromTransactionRecords(rec.Transactions)
		if err != nil {
			return chain.State{}, fmt.Errorf("block %d: %w", rec.Depth, err)
		}
		blocks = append(blocks, chain.Block{
			Depth:        rec.Depth,
			PreviousHash: rec.PreviousHash,
			Transactions: txs,
			Nonce:        rec.Nonce,
			Timestamp:    rec.Timestamp,
		})
	}

	pending, err := fromTransactionRecords(f.Pending)
	if err != nil {
		return chain.State{}, fmt.Errorf("pending: %w", err)
	}
	return chain.State{Chain: blocks, Pending: pending}, nil
}
