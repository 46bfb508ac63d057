package corrupt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Entropie wird in Bloecken von hoechstens 64 KiB gezogen.
const (
	randRefillBytes = 65536
	randPoolWords   = randRefillBytes / 4 // 16384
)

// randPool puffert Zufallswoerter aus einer Entropiequelle.
// Nicht thread-sicher; jeder Lauf besitzt einen eigenen Pool.
type randPool struct {
	src  io.Reader
	buf  []byte
	pool []uint32
	idx  int
}

func newRandPool(src io.Reader) *randPool {
	return &randPool{
		src:  src,
		buf:  make([]byte, randRefillBytes),
		pool: make([]uint32, randPoolWords),
		idx:  randPoolWords,
	}
}

func (p *randPool) refill() error {
	if _, err := io.ReadFull(p.src, p.buf); err != nil {
		return fmt.Errorf("zufallsquelle lesen: %w", err)
	}
	for i := range p.pool {
		p.pool[i] = binary.LittleEndian.Uint32(p.buf[i*4:])
	}
	p.idx = 0
	return nil
}

func (p *randPool) uint32() (uint32, error) {
	if p.idx >= len(p.pool) {
		if err := p.refill(); err != nil {
			return 0, err
		}
	}
	v := p.pool[p.idx]
	p.idx++
	return v, nil
}

// intn gibt eine gleichverteilte Zahl in [0, n) zurueck (n > 0).
// Fuer n bis 2^32 wird ein Wort per Multiply-Shift abgebildet, darueber
// werden zwei Woerter kombiniert.
func (p *randPool) intn(n int) (int, error) {
	hi, err := p.uint32()
	if err != nil {
		return 0, err
	}
	if uint64(n) <= math.MaxUint32+1 {
		return int((uint64(hi) * uint64(n)) >> 32), nil
	}

	lo, err := p.uint32()
	if err != nil {
		return 0, err
	}
	return int((uint64(hi)<<32 | uint64(lo)) % uint64(n)), nil
}

// bit gibt einen Bit-Index in [0, 8) zurueck
func (p *randPool) bit() (uint, error) {
	v, err := p.uint32()
	if err != nil {
		return 0, err
	}
	return uint(v & 7), nil
}
