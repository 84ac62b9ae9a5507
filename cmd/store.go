package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/germplasm-cli/internal/config"
	"github.com/sells-group/germplasm-cli/internal/store"
)

// initStore opens and migrates the configured store. It returns nil when
// the driver is "none".
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case config.DriverNone, "":
		return nil, nil
	case config.DriverSQLite:
		st, err = store.NewSQLite(c.Store.DatabaseURL, c.Store.CacheTTL())
	case config.DriverPostgres:
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, nil, c.Store.CacheTTL())
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
