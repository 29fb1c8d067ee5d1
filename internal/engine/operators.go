package engine

import "math/rand"

// twoPointCrossover exchanges the middle segment between two distinct cut
// points p1 < p2 drawn from {1, ..., length-1}. Two distinct interior
// points need length >= 3; shorter parents come back as plain copies.
// Children never alias the parents' gene buffers.
func twoPointCrossover(rng *rand.Rand, parentA, parentB []byte) ([]byte, []byte) {
	length := len(parentA)
	if length < 3 {
		return cloneGenes(parentA), cloneGenes(parentB)
	}

	p1 := 1 + rng.Intn(length-1)
	p2 := 1 + rng.Intn(length-1)
	for p2 == p1 {
		p2 = 1 + rng.Intn(length-1)
	}
	if p1 > p2 {
		p1, p2 = p2, p1
	}

	childA := cloneGenes(parentA)
	childB := cloneGenes(parentB)
	copy(childA[p1:p2], parentB[p1:p2])
	copy(childB[p1:p2], parentA[p1:p2])
	return childA, childB
}

// mutate flips each gene independently with the given probability.
func mutate(rng *rand.Rand, genes []byte, rate float64) {
	for i := range genes {
		if rng.Float64() < rate {
			genes[i] ^= 1
		}
	}
}

func cloneGenes(genes []byte) []byte {
	cloned := make([]byte, len(genes))
	copy(cloned, genes)
	return cloned
}
