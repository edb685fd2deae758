package state

import (
	"time"

	"remap/rewrite"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:        time.Now(),
		DefaultRules: rewrite.Default(),
	}
}
