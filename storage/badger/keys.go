package badger

import (
	"fmt"

	"github.com/poiesic/tessera/core"
)

// Key prefixes for different data types
const (
	vectorPrefix = "vecrec"
)

// makeVectorKey generates a key for a cached vector by ID.
func makeVectorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", vectorPrefix, id))
}
