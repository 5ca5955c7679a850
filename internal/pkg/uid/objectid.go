package uid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"os"
	"sync/atomic"
	"time"
)

// ObjectIDGenerator generates 64 hex char opaque ids, used as session handles.
//
// Layout: 6 byte millisecond timestamp, 6 byte node id, 2 byte pid,
// 4 byte counter and 14 random bytes.
type ObjectIDGenerator struct {
	nodeID  [6]byte
	pid     uint16
	counter atomic.Uint32
}

// NewObjectIDGenerator creates a generator with a stable node identity.
func NewObjectIDGenerator() (*ObjectIDGenerator, error) {
	fp, err := nodeFingerprint()
	if err != nil {
		return nil, err
	}

	g := &ObjectIDGenerator{pid: uint16(os.Getpid())}
	copy(g.nodeID[:], fp[:6])

	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	g.counter.Store(binary.BigEndian.Uint32(seed[:]))

	return g, nil
}

// Generate returns a new id. It panics only if the system random source fails.
func (g *ObjectIDGenerator) Generate() string {
	var raw [32]byte

	ts := uint64(time.Now().UnixMilli())
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], ts)
	copy(raw[0:6], tsBuf[2:])
	copy(raw[6:12], g.nodeID[:])
	binary.BigEndian.PutUint16(raw[12:14], g.pid)
	binary.BigEndian.PutUint32(raw[14:18], g.counter.Add(1))

	// session handles must be unguessable; never fall back to a derived value
	if _, err := rand.Read(raw[18:]); err != nil {
		panic(err)
	}

	return hex.EncodeToString(raw[:])
}
