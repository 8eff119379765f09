package game

// EncodeBatch flattens a slice of states, each of which must share the same
// Encode() length, into one contiguous tensor suitable for a single forward
// pass through the network.
func EncodeBatch(states []State) []float32 {
	if len(states) == 0 {
		return nil
	}
	one := states[0].Encode()
	out := make([]float32, 0, len(one)*len(states))
	out = append(out, one...)
	for _, s := range states[1:] {
		out = append(out, s.Encode()...)
	}
	return out
}
