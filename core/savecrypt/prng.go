package savecrypt

// Constants of the games' linear congruential generator.
const (
	prngMult uint32 = 0x41C64E6D
	prngInc  uint32 = 0x6073
)

// PRNGNext advances the Pokémon PRNG one step: seed' = mult*seed + inc
// (mod 2^32). It returns the emitted 16-bit value (the high half of the new
// seed) and the seed to carry into the next step.
func PRNGNext(seed uint32) (value uint16, next uint32) {
	next = prngMult*seed + prngInc
	return uint16(next >> 16), next
}

// keystream is a running PRNG stream used to XOR-mask block words. Outputs
// are strictly ordered; each depends on the seed left by the previous step.
type keystream struct {
	seed uint32
}

func (k *keystream) next() uint16 {
	v, s := PRNGNext(k.seed)
	k.seed = s
	return v
}
