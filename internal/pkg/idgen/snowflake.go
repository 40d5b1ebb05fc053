package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Initialize sets up the Snowflake ID generator with a node ID.
// Only the first call has any effect.
func Initialize(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// RequestID generates a new ID used to correlate the log lines of one API request
func RequestID() string {
	// Initialize with default node ID if not already initialized.
	// Going through once.Do also orders this read after the write of node.
	_ = Initialize(1)
	if node == nil {
		return ""
	}
	return node.Generate().String()
}
