package xnl

// DefaultRegistry returns the one keyed-challenge transform this build
// documents: a fixed XOR mask for the "business-uhf" family (the family
// internal/radio/models.RDU2020 registers under). Other radio families'
// transforms are not reverse-engineered here; callers must not guess at
// them, so they are simply absent and Session.Open reports UnsupportedAuth
// for any family not in this map.
func DefaultRegistry() Registry {
	return Registry{
		"business-uhf": businessUHFChallenge,
	}
}

var businessUHFMask = []byte{0x5A, 0xC3, 0x96, 0x69}

func businessUHFChallenge(challenge []byte) []byte {
	out := make([]byte, len(challenge))
	for i, b := range challenge {
		out[i] = b ^ businessUHFMask[i%len(businessUHFMask)]
	}
	return out
}
