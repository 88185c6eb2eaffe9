package csm

// MaxVertexOutputs is the number of vertex output slots a vertex shader can write.
const MaxVertexOutputs = 16

// Attribute is a single vertex output slot. N is the number of components
// in use; N == 0 marks the slot as unused.
type Attribute struct {
	N uint8
	V [MaxComponents]float32
}

// Components returns the used components of a.
func (a *Attribute) Components() []float32 { return a.V[:a.N] }

// AttributeSet holds every vertex output slot of one vertex.
type AttributeSet [MaxVertexOutputs]Attribute

// usedMask returns a bitmask with bit i set when slot i has components.
func (as *AttributeSet) usedMask() (mask uint16) {
	for i := range as {
		if as[i].N != 0 {
			mask |= 1 << i
		}
	}
	return mask
}

// checkAttributes verifies the three attribute sets of a triangle agree on
// the component count of every slot. It returns the offending slot or -1.
func checkAttributes(sets *[3]AttributeSet) int {
	for slot := 0; slot < MaxVertexOutputs; slot++ {
		n := sets[0][slot].N
		if sets[1][slot].N != n || sets[2][slot].N != n {
			return slot
		}
	}
	return -1
}

// lerpAttributes sets dst to a + (b-a)*t for every slot used by a.
func lerpAttributes(dst, a, b *AttributeSet, t float32) {
	for slot := range a {
		n := a[slot].N
		dst[slot].N = n
		if n == 0 {
			continue
		}
		av, bv := &a[slot].V, &b[slot].V
		for c := uint8(0); c < n; c++ {
			dst[slot].V[c] = av[c] + (bv[c]-av[c])*t
		}
	}
}

// interpAttributes sets dst to the weighted sum of the three sets for the
// slots in mask. The weights must be normalized by the caller.
func interpAttributes(dst *AttributeSet, sets *[3]AttributeSet, w [3]float32, mask uint16) {
	for slot := 0; mask != 0; slot++ {
		bit := uint16(1) << slot
		if mask&bit == 0 {
			continue
		}
		mask &^= bit
		n := sets[0][slot].N
		dst[slot].N = n
		v0, v1, v2 := &sets[0][slot].V, &sets[1][slot].V, &sets[2][slot].V
		for c := uint8(0); c < n; c++ {
			dst[slot].V[c] = v0[c]*w[0] + v1[c]*w[1] + v2[c]*w[2]
		}
	}
}
