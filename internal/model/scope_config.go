package model

// ScopeConfig sizes the queues and shards backing a Store or a sharing registry.
type ScopeConfig struct {
	BufferSize int // default: 64
	NumShards  int // default: 1
}

const (
	defaultBufferSize = 64
	defaultNumShards  = 1
)

func NewScopeConfig(bufferSize int, numShards int) ScopeConfig {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if numShards <= 0 {
		numShards = defaultNumShards
	}
	return ScopeConfig{
		BufferSize: bufferSize,
		NumShards:  numShards,
	}
}

// Partitionable is implemented by anything routed to a shard by key.
type Partitionable interface {
	PartitionKey() string
}
