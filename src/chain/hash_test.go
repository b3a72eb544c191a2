package chain

import (
	"bytes"
	"testing"
)

func sampleBlock() Block {
	return Block{
		Depth:        3,
		PreviousHash: "00ab",
		Transactions: []Transaction{
			{Sender: "alice", Recipient: "bob", Amount: 4, Signature: []byte("sig")},
			{Sender: MiningSender, Recipient: "alice", Amount: MiningReward},
		},
		Nonce:     42,
		Timestamp: 1700000000000000000,
	}
}

func TestHashBytesKnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "abc",
			input: []byte("abc"),
			want:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HashBytes(tc.input); got != tc.want {
				t.Fatalf("HashBytes(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestHashBlockDeterministic(t *testing.T) {
	a := sampleBlock()
	b := sampleBlock()
	if HashBlock(a) != HashBlock(b) {
		t.Fatalf("equal blocks hashed differently")
	}
	if HashBlock(a) != HashBlock(a) {
		t.Fatalf("repeated hash of the same block differs")
	}
	if got := len(HashBlock(a)); got != 64 {
		t.Fatalf("digest length = %d, want 64", got)
	}
}

func TestHashBlockFieldSensitivity(t *testing.T) {
	base := HashBlock(sampleBlock())

	tests := []struct {
		name   string
		mutate func(b *Block)
	}{
		{"depth", func(b *Block) { b.Depth++ }},
		{"previous hash", func(b *Block) { b.PreviousHash = "00ac" }},
		{"nonce plus one", func(b *Block) { b.Nonce++ }},
		{"timestamp", func(b *Block) { b.Timestamp++ }},
		{"sender", func(b *Block) { b.Transactions[0].Sender = "mallory" }},
		{"recipient", func(b *Block) { b.Transactions[0].Recipient = "mallory" }},
		{"amount", func(b *Block) { b.Transactions[0].Amount = 4.01 }},
		{"transaction order", func(b *Block) {
			b.Transactions[0], b.Transactions[1] = b.Transactions[1], b.Transactions[0]
		}},
		{"dropped transaction", func(b *Block) { b.Transactions = b.Transactions[:1] }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := sampleBlock()
			tc.mutate(&b)
			if HashBlock(b) == base {
				t.Fatalf("changing %s did not change the block hash", tc.name)
			}
		})
	}
}

func TestHashExcludesSignature(t *testing.T) {
	a := sampleBlock()
	b := sampleBlock()
	b.Transactions[0].Signature = []byte("another signature")
	if HashBlock(a) != HashBlock(b) {
		t.Fatalf("signature changed the block hash")
	}
	if ProofHash(a.Transactions, "x", 1) != ProofHash(b.Transactions, "x", 1) {
		t.Fatalf("signature changed the proof hash")
	}
}

func TestTransactionBytesFieldOrder(t *testing.T) {
	ab := TransactionBytes("a", "b", 1)
	ba := TransactionBytes("b", "a", 1)
	if bytes.Equal(ab, ba) {
		t.Fatalf("swapping sender and recipient produced identical encodings")
	}
	if !bytes.Equal(ab, CanonicalTransaction(Transaction{Sender: "a", Recipient: "b", Amount: 1})) {
		t.Fatalf("CanonicalTransaction differs from TransactionBytes")
	}
}

func TestCanonicalProofNoAmbiguity(t *testing.T) {
	// plain string concatenation would make these two guesses collide
	one := CanonicalProof(nil, "ab", 1)
	two := CanonicalProof(nil, "a", 11)
	if bytes.Equal(one, two) {
		t.Fatalf("distinct proof inputs share an encoding")
	}
}
