package uid

import (
	"encoding/binary"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates 63-bit time ordered ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake derives a node number (0..1023) from the host identity and pid
// so replicas on different hosts do not collide.
func NewSnowflake() (*Snowflake, error) {
	fp, err := nodeFingerprint()
	if err != nil {
		return nil, err
	}

	n := (binary.BigEndian.Uint16(fp[:2]) ^ uint16(os.Getpid())) % 1024

	node, err := snowflake.NewNode(int64(n))
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
