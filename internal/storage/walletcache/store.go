// Package walletcache persists fetched wallet activity as per-wallet JSON
// snapshots so repeated runs skip the slow paginated fetch.
package walletcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/taobook/internal/domain"
)

const defaultCacheDir = "./cache"

// Store reads and writes one JSON activity file per wallet address.
type Store struct {
	dir string
}

// NewStore creates a wallet cache under dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultCacheDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create wallet cache dir")
	}
	return &Store{dir: dir}, nil
}

// Load returns the cached activity for a wallet. The second return value
// reports whether a cache file existed.
func (s *Store) Load(wallet string) (domain.WalletActivity, bool, error) {
	payload, err := os.ReadFile(s.path(wallet))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.WalletActivity{}, false, nil
		}
		return domain.WalletActivity{}, false, errors.Wrap(err, "read wallet cache")
	}

	var activity domain.WalletActivity
	if err := json.Unmarshal(payload, &activity); err != nil {
		return domain.WalletActivity{}, false, errors.Wrapf(err, "decode wallet cache for %s", wallet)
	}
	return activity, true, nil
}

// Save writes the activity snapshot for a wallet, replacing any previous one.
func (s *Store) Save(wallet string, activity domain.WalletActivity) error {
	payload, err := json.MarshalIndent(activity, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal wallet activity")
	}
	if err := os.WriteFile(s.path(wallet), payload, 0o644); err != nil {
		return errors.Wrapf(err, "write wallet cache for %s", wallet)
	}
	return nil
}

func (s *Store) path(wallet string) string {
	return filepath.Join(s.dir, fmt.Sprintf("historical_data_%s.json", wallet))
}
