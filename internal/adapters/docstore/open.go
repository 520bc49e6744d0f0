package docstore

import (
	"fmt"

	"github.com/okian/fest/internal/config"
	"github.com/okian/fest/pkg/logger"
)

// Open picks the backend named by cfg.StoreDriver.
func Open(cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverBadger:
		bc := DefaultBadgerConfig(cfg.StorePath)
		if cfg.StoreInMemory {
			bc = InMemoryBadgerConfig()
		}
		bc.Logger = log.Named("badger")
		return OpenBadger(bc, log)
	case config.DriverSQLite:
		path := cfg.StorePath
		if cfg.StoreInMemory {
			path = MemoryPath
		}
		return OpenSQLite(path, log)
	}
	return nil, fmt.Errorf("%w: %q", ErrDriver, cfg.StoreDriver)
}
