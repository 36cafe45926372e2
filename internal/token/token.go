package token

import (
	"time"

	tokenDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/token"
)

// StoreAPI is the persistence surface for verification and reset tokens.
// FindByValue returning a token says nothing about freshness: the sweeper
// removes aged rows on its own schedule, so callers enforce their own
// expiry rules on top.
type StoreAPI interface {
	Issue(t *tokenDatamodel.Token) error
	FindByValue(value string) (*tokenDatamodel.Token, error)
	FindAllForOwner(userID string) ([]*tokenDatamodel.Token, error)
	DeleteByOwner(userID string) error
	DeleteByValue(value string) error
}

// SweepStore is the slice of the store the TTL sweeper needs.
type SweepStore interface {
	DeleteCreatedBefore(cutoff time.Time) (int64, error)
}
