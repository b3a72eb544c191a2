package chain

import "strings"

// ProofHash is the digest tested by the proof-of-work predicate.
func ProofHash(txs []Transaction, previousHash string, nonce uint64) string {
	return HashBytes(CanonicalProof(txs, previousHash, nonce))
}

// MeetsDifficulty reports whether the first difficulty hex characters of
// digest are all '0'.
func MeetsDifficulty(digest string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > len(digest) {
		return false
	}
	return strings.Count(digest[:difficulty], "0") == difficulty
}

// ValidNonce reports whether nonce solves the proof for txs and previousHash.
func ValidNonce(txs []Transaction, previousHash string, nonce uint64, difficulty int) bool {
	return MeetsDifficulty(ProofHash(txs, previousHash, nonce), difficulty)
}

// FindNonce searches upward from zero for the smallest valid nonce. The
// search is unbounded and deterministic.
func FindNonce(txs []Transaction, previousHash string, difficulty int) uint64 {
	var nonce uint64
	for !ValidNonce(txs, previousHash, nonce, difficulty) {
		nonce++
	}
	return nonce
}
