package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are 26-character Crockford Base32 ULIDs: 48-bit millisecond
// timestamp followed by 80 bits of randomness. Sortable by creation time and
// unique within the process without external coordination.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func newJobID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ts<<16)
	rand.Read(b[6:])
	// Sequence counter keeps IDs distinct within the same millisecond.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeBase32(b)
}

// encodeBase32 encodes 128 bits into 26 Crockford Base32 characters, reading
// five bits at a time from the most significant end (the leading character
// carries only three bits).
func encodeBase32(b [16]byte) string {
	var out [26]byte
	bitPos := -2
	for i := range out {
		var idx int
		byteIdx := bitPos / 8
		if bitPos < 0 {
			idx = int(b[0] >> 5)
		} else {
			shift := bitPos % 8
			idx = int(b[byteIdx]) << 8
			if byteIdx+1 < len(b) {
				idx |= int(b[byteIdx+1])
			}
			idx = (idx >> (11 - shift)) & 31
		}
		out[i] = crockford[idx&31]
		bitPos += 5
	}
	return string(out[:])
}
