// internal/loader/errors.go
package loader

import (
	"errors"

	"github.com/hydraswap-io/hydra-go/internal/solclient"
)

// ErrDerivationFailed reports that an account address could not be
// derived. Fatal to the operation; never retried automatically.
var ErrDerivationFailed = errors.New("address derivation failed")

// ErrNotFound is the transport's not-found sentinel, re-exported so
// callers probing for existence need not import solclient.
var ErrNotFound = solclient.ErrAccountNotFound

// IsNotFound reports whether err means the account does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
