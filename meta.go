package goldbach

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
)

// Checkpoint is the persisted state of a run: the prime cache and the last
// target that was resolved. LastTarget 0 means nothing was resolved yet.
type Checkpoint struct {
	LastTarget int
	Cache      *PrimeCache
}

// FreshCheckpoint returns the state of a run that has never been saved.
func FreshCheckpoint() Checkpoint {
	return Checkpoint{Cache: NewPrimeCache()}
}

// FirstTarget is the lowest target a search covers.
const FirstTarget = 4

// NextTarget returns where a run resumes from cp.
func (cp Checkpoint) NextTarget() int {
	if cp.LastTarget < FirstTarget {
		return FirstTarget
	}
	return cp.LastTarget + 2
}

// meta file layout: 20 bytes (little-endian)
// 0..7   : uint64 last resolved target
// 8..15  : uint64 prime count at save time (informational)
// 16..19 : crc32 over bytes 0..15
const metaSize = 20

func metaPath(base string) string { return base + ".meta" }

func encodeMeta(lastTarget, primeCount uint64) []byte {
	buf := make([]byte, metaSize)
	binary.LittleEndian.PutUint64(buf[0:8], lastTarget)
	binary.LittleEndian.PutUint64(buf[8:16], primeCount)
	binary.LittleEndian.PutUint32(buf[16:20], crc32.ChecksumIEEE(buf[0:16]))
	return buf
}

func decodeMeta(data []byte) (lastTarget, primeCount uint64, err error) {
	if len(data) != metaSize {
		return 0, 0, fmt.Errorf("%w: meta is %d bytes, want %d", ErrCorrupt, len(data), metaSize)
	}
	if crc32.ChecksumIEEE(data[0:16]) != binary.LittleEndian.Uint32(data[16:20]) {
		return 0, 0, fmt.Errorf("%w: meta CRC mismatch", ErrCorrupt)
	}
	return binary.LittleEndian.Uint64(data[0:8]), binary.LittleEndian.Uint64(data[8:16]), nil
}

func loadMeta(path string) (lastTarget, primeCount uint64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	return decodeMeta(data)
}
