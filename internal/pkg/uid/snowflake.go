package uid

import (
	"crypto/sha256"
	"encoding/binary"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 identifiers.
//
// The node number is derived from the hostname so that replicas on different
// machines produce disjoint ID ranges without coordination.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake constructs a Snowflake generator.
func NewSnowflake() (*Snowflake, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(hostname))
	nodeNum := int64(binary.BigEndian.Uint16(sum[:2])) % 1024

	node, err := snowflake.NewNode(nodeNum)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique identifier.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
