package goldbach

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// ErrCorrupt marks persisted state that could not be decoded. Loaders treat it
// as "no prior state".
var ErrCorrupt = errors.New("corrupt prime snapshot")

// snapshot layout (little-endian):
// 0..3   : magic "GBPC"
// 4      : format version
// 5..7   : reserved, zero
// 8..15  : uint64 count
// 16..   : count × uint64 prime
// last 4 : crc32 (IEEE) over every preceding byte
const (
	snapshotMagic   = "GBPC"
	snapshotVersion = 1
	headerSize      = 16
	crcSize         = 4
)

func snapshotSize(count int) int { return headerSize + count*8 + crcSize }

// Snapshot serializes the cache. LoadPrimeCache(c.Snapshot()) reproduces c.
func (c *PrimeCache) Snapshot() []byte {
	return appendSnapshot(make([]byte, 0, snapshotSize(len(c.primes))), c.primes)
}

// appendSnapshot encodes primes onto dst and returns the extended slice.
func appendSnapshot(dst []byte, primes []int) []byte {
	start := len(dst)
	dst = append(dst, snapshotMagic...)
	dst = append(dst, snapshotVersion, 0, 0, 0)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(primes)))
	for _, p := range primes {
		dst = binary.LittleEndian.AppendUint64(dst, uint64(p))
	}
	crc := crc32.ChecksumIEEE(dst[start:])
	return binary.LittleEndian.AppendUint32(dst, crc)
}

// DecodePrimes parses a snapshot and checks its integrity and shape. Every
// failure wraps ErrCorrupt.
func DecodePrimes(data []byte) ([]int, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorrupt)
	}
	if len(data) < headerSize+crcSize {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrCorrupt, len(data))
	}
	if string(data[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:4])
	}
	if v := data[4]; v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	count := binary.LittleEndian.Uint64(data[8:16])
	body := uint64(len(data) - headerSize - crcSize)
	if body%8 != 0 || count != body/8 {
		return nil, fmt.Errorf("%w: count %d does not match %d payload bytes", ErrCorrupt, count, body)
	}

	payload := data[:len(data)-crcSize]
	storedCRC := binary.LittleEndian.Uint32(data[len(data)-crcSize:])
	if crc32.ChecksumIEEE(payload) != storedCRC {
		return nil, fmt.Errorf("%w: CRC mismatch", ErrCorrupt)
	}

	primes := make([]int, count)
	for i := range primes {
		off := headerSize + i*8
		v := binary.LittleEndian.Uint64(data[off : off+8])
		if v > uint64(maxInt) {
			return nil, fmt.Errorf("%w: value %d at index %d overflows int", ErrCorrupt, v, i)
		}
		primes[i] = int(v)
	}
	if err := checkShape(primes); err != nil {
		return nil, err
	}
	return primes, nil
}

const maxInt = int(^uint(0) >> 1)

// LoadPrimeCache decodes a snapshot. It always returns a usable cache: when
// data is missing or malformed the seed cache is returned together with the
// reason, which callers are free to log and otherwise ignore.
func LoadPrimeCache(data []byte) (*PrimeCache, error) {
	primes, err := DecodePrimes(data)
	if err != nil {
		return NewPrimeCache(), err
	}
	return &PrimeCache{primes: primes}, nil
}
