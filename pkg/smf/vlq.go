package smf

// MaxVLQ is the largest value a standard MIDI variable-length quantity can
// encode: four bytes of seven payload bits each.
const MaxVLQ = 0x0FFFFFFF

// AppendVLQ appends the big-endian variable-length encoding of v to dst.
// Values above MaxVLQ are truncated to their low 28 bits.
func AppendVLQ(dst []byte, v uint32) []byte {
	v &= MaxVLQ
	var tmp [4]byte
	n := len(tmp) - 1
	tmp[n] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		n--
		tmp[n] = byte(v&0x7F) | 0x80
	}
	return append(dst, tmp[n:]...)
}
