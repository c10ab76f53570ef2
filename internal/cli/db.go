package cli

import (
	"fmt"
	"os"

	"github.com/roach88/datalite/internal/store"
)

// openExisting opens a database that must already exist. Commands that
// read or amend existing state use this, so a typo in --db fails loudly
// instead of leaving a fresh empty database behind. Only run creates
// databases.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}
