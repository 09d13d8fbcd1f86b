package threadcache

// mix64 is the splitmix64/fmix64 finalizer: three xor-shift-33 +
// multiply-by-odd-constant rounds, used to spread goroutine identities
// evenly across the bucket array.
func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
