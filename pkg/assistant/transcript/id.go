package transcript

import "github.com/google/uuid"

// NewExchangeID generates a new unique exchange identifier.
func NewExchangeID() string {
	return "exch_" + uuid.NewString()
}
