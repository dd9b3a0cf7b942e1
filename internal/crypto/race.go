package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var ErrNoRunners = errors.New("race needs at least one runner")

// DrawWinner picks a runner number uniformly from [1, runners] using crypto/rand.
func DrawWinner(runners int) (int, error) {
	if runners < 1 {
		return 0, ErrNoRunners
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(runners)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 1, nil
}
