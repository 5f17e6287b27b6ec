package sale

import (
	"bytes"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AllowlistLeaf hashes a participant identity into its accumulator leaf.
func AllowlistLeaf(addr [20]byte) [32]byte {
	return ethcrypto.Keccak256Hash(addr[:])
}

// VerifyAllowlistProof folds the sibling hashes into the leaf and compares
// the result against the published root. At each step the pair is ordered
// by byte value before hashing, so proofs are independent of left/right
// positioning. An all-zero root always verifies true; it is the designed
// escape hatch meaning "allow everyone".
func VerifyAllowlistProof(root, leaf [32]byte, proof [][32]byte) bool {
	if root == ([32]byte{}) {
		return true
	}
	computed := leaf
	for _, sibling := range proof {
		computed = hashOrderedPair(computed, sibling)
	}
	return computed == root
}

// BuildAllowlistRoot computes the accumulator root committing to the given
// leaves. An empty leaf set produces the all-zero root. When a level holds
// an odd number of nodes the last node is paired with itself, matching the
// proof layout BuildAllowlistProof produces.
func BuildAllowlistRoot(leaves [][32]byte) [32]byte {
	if len(leaves) == 0 {
		return [32]byte{}
	}
	level := append([][32]byte(nil), leaves...)
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashOrderedPair(level[i], right))
		}
		level = next
	}
	return level[0]
}

// BuildAllowlistProof returns the sibling path for the leaf at index,
// suitable for VerifyAllowlistProof against BuildAllowlistRoot of the same
// leaf set.
func BuildAllowlistProof(leaves [][32]byte, index int) [][32]byte {
	if index < 0 || index >= len(leaves) {
		return nil
	}
	proof := make([][32]byte, 0)
	level := append([][32]byte(nil), leaves...)
	idx := index
	for len(level) > 1 {
		sibling := idx ^ 1
		if sibling >= len(level) {
			sibling = idx
		}
		proof = append(proof, level[sibling])

		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashOrderedPair(level[i], right))
		}
		level = next
		idx /= 2
	}
	return proof
}

func hashOrderedPair(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return ethcrypto.Keccak256Hash(a[:], b[:])
	}
	return ethcrypto.Keccak256Hash(b[:], a[:])
}
