package sale

import (
	"bytes"
	"testing"
)

func testLeaves(n int) [][32]byte {
	leaves := make([][32]byte, n)
	for i := range leaves {
		leaves[i] = AllowlistLeaf(newTestAddress(byte(i + 1)))
	}
	return leaves
}

func TestVerifyAllowlistProofAllSizes(t *testing.T) {
	for n := 1; n <= 9; n++ {
		leaves := testLeaves(n)
		root := BuildAllowlistRoot(leaves)
		for i := range leaves {
			proof := BuildAllowlistProof(leaves, i)
			if !VerifyAllowlistProof(root, leaves[i], proof) {
				t.Fatalf("size %d: leaf %d rejected", n, i)
			}
		}
	}
}

func TestVerifyAllowlistProofRejectsOutsider(t *testing.T) {
	leaves := testLeaves(5)
	root := BuildAllowlistRoot(leaves)

	outsider := AllowlistLeaf(newTestAddress(0xEE))
	for i := range leaves {
		if VerifyAllowlistProof(root, outsider, BuildAllowlistProof(leaves, i)) {
			t.Fatalf("outsider accepted with proof for leaf %d", i)
		}
	}
	if VerifyAllowlistProof(root, outsider, nil) {
		t.Fatalf("outsider accepted with empty proof")
	}
}

func TestVerifyAllowlistProofZeroRootEscapeHatch(t *testing.T) {
	var root [32]byte
	leaf := AllowlistLeaf(newTestAddress(0x01))
	if !VerifyAllowlistProof(root, leaf, nil) {
		t.Fatalf("zero root must accept empty proof")
	}
	garbage := [][32]byte{{0xDE, 0xAD}, {0xBE, 0xEF}}
	if !VerifyAllowlistProof(root, leaf, garbage) {
		t.Fatalf("zero root must accept any proof")
	}
}

func TestBuildAllowlistRootEmptySet(t *testing.T) {
	if root := BuildAllowlistRoot(nil); root != ([32]byte{}) {
		t.Fatalf("empty leaf set must produce the all-zero root")
	}
}

func TestBuildAllowlistProofBounds(t *testing.T) {
	leaves := testLeaves(3)
	if proof := BuildAllowlistProof(leaves, -1); proof != nil {
		t.Fatalf("expected nil proof for negative index")
	}
	if proof := BuildAllowlistProof(leaves, 3); proof != nil {
		t.Fatalf("expected nil proof for out-of-range index")
	}
}

func TestSingleLeafRootIsLeaf(t *testing.T) {
	leaves := testLeaves(1)
	root := BuildAllowlistRoot(leaves)
	if root != leaves[0] {
		t.Fatalf("single-leaf root must equal the leaf")
	}
	if proof := BuildAllowlistProof(leaves, 0); len(proof) != 0 {
		t.Fatalf("single-leaf proof must be empty, got %d nodes", len(proof))
	}
}

func TestHashOrderedPairIsSymmetric(t *testing.T) {
	a := AllowlistLeaf(newTestAddress(0x01))
	b := AllowlistLeaf(newTestAddress(0x02))
	left := hashOrderedPair(a, b)
	right := hashOrderedPair(b, a)
	if !bytes.Equal(left[:], right[:]) {
		t.Fatalf("pair hash must not depend on argument order")
	}
}
