package chain

import (
	"encoding/hex"
	"math"

	sha256 "github.com/minio/sha256-simd"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the canonical encodings. These are part of the hash
// format: changing any of them invalidates every stored chain.
const (
	txSenderField    protowire.Number = 1
	txRecipientField protowire.Number = 2
	txAmountField    protowire.Number = 3

	blockDepthField        protowire.Number = 1
	blockPreviousHashField protowire.Number = 2
	blockTransactionsField protowire.Number = 3
	blockNonceField        protowire.Number = 4
	blockTimestampField    protowire.Number = 5

	proofTransactionsField protowire.Number = 1
	proofPreviousHashField protowire.Number = 2
	proofNonceField        protowire.Number = 3
)

// HashBytes returns the lowercase hex sha-256 digest of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashBlock returns the digest of the block's canonical encoding.
func HashBlock(b Block) string {
	return HashBytes(CanonicalBlock(b))
}

// TransactionBytes is the canonical encoding of a transaction's content.
// Signatures never take part in hashing, so this is also the message a
// wallet signs.
func TransactionBytes(sender, recipient string, amount float64) []byte {
	var out []byte
	out = protowire.AppendTag(out, txSenderField, protowire.BytesType)
	out = protowire.AppendString(out, sender)
	out = protowire.AppendTag(out, txRecipientField, protowire.BytesType)
	out = protowire.AppendString(out, recipient)
	out = protowire.AppendTag(out, txAmountField, protowire.Fixed64Type)
	out = protowire.AppendFixed64(out, math.Float64bits(amount))
	return out
}

// CanonicalTransaction encodes sender, recipient and amount in that order.
func CanonicalTransaction(tx Transaction) []byte {
	return TransactionBytes(tx.Sender, tx.Recipient, tx.Amount)
}

func appendTransactions(out []byte, field protowire.Number, txs []Transaction) []byte {
	for _, tx := range txs {
		out = protowire.AppendTag(out, field, protowire.BytesType)
		out = protowire.AppendBytes(out, CanonicalTransaction(tx))
	}
	return out
}

// CanonicalBlock encodes every block field in a fixed order.
func CanonicalBlock(b Block) []byte {
	var out []byte
	out = protowire.AppendTag(out, blockDepthField, protowire.VarintType)
	out = protowire.AppendVarint(out, b.Depth)
	out = protowire.AppendTag(out, blockPreviousHashField, protowire.BytesType)
	out = protowire.AppendString(out, b.PreviousHash)
	out = appendTransactions(out, blockTransactionsField, b.Transactions)
	out = protowire.AppendTag(out, blockNonceField, protowire.VarintType)
	out = protowire.AppendVarint(out, b.Nonce)
	out = protowire.AppendTag(out, blockTimestampField, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(b.Timestamp))
	return out
}

// CanonicalProof encodes the proof-of-work guess for (txs, previousHash, nonce).
func CanonicalProof(txs []Transaction, previousHash string, nonce uint64) []byte {
	var out []byte
	out = appendTransactions(out, proofTransactionsField, txs)
	out = protowire.AppendTag(out, proofPreviousHashField, protowire.BytesType)
	out = protowire.AppendString(out, previousHash)
	out = protowire.AppendTag(out, proofNonceField, protowire.VarintType)
	out = protowire.AppendVarint(out, nonce)
	return out
}
