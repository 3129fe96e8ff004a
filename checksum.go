package bk178x

// Checksum returns the 8-bit wraparound sum of b.
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}
