package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/rankit/core"
)

// Key prefixes for different data types. Every prefix ends in a separator
// so a scan over one never picks up keys of another.
const (
	recordPrefix     = "rec:"
	recordDatePrefix = "recd:"
	themePrefix      = "thm:"
	recordIDSeq      = "seq:rec"
)

// makeIDKey generates prefix:id with the ID in BigEndian order so keys sort by ID.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeRecordKey generates a key for a record by ID.
func makeRecordKey(id core.ID) []byte {
	return makeIDKey(recordPrefix, id)
}

// makeThemeKey generates a key for a theme by ID.
func makeThemeKey(id core.ID) []byte {
	return makeIDKey(themePrefix, id)
}

// makeRecordDateKey generates a composite key for the published-date index.
// Format: prefix:timestamp:id
func makeRecordDateKey(published time.Time, id core.ID) []byte {
	buf := make([]byte, len(recordDatePrefix)+16)
	offset := copy(buf, recordDatePrefix)
	// Flipping the sign bit keeps pre-1970 dates ahead of later ones.
	binary.BigEndian.PutUint64(buf[offset:], dateBits(published))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialRecordDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialRecordDateKey(published time.Time) []byte {
	buf := make([]byte, len(recordDatePrefix)+8)
	offset := copy(buf, recordDatePrefix)
	binary.BigEndian.PutUint64(buf[offset:], dateBits(published))
	return buf
}

func dateBits(t time.Time) uint64 {
	return uint64(t.UnixMicro()) ^ (1 << 63)
}
