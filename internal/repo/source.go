package repo

import (
	"context"
	"fmt"

	"Aquaquote/internal/catalog"
)

// LoadCatalog resolves the active catalog: the database when dsn is set,
// then the file at path, then the embedded default. The returned string
// names the source for logging.
func LoadCatalog(ctx context.Context, dsn, path string) (*catalog.Catalog, string, error) {
	switch {
	case dsn != "":
		db, err := Open(ctx, dsn)
		if err != nil {
			return nil, "", err
		}
		defer db.Close()
		def, err := NewPostgresCatalogDB(db).LoadCatalog(ctx, catalog.Defaults())
		if err != nil {
			return nil, "", fmt.Errorf("loading catalog from database: %w", err)
		}
		c, err := catalog.New(def)
		return c, "database", err
	case path != "":
		c, err := catalog.LoadFile(path)
		return c, path, err
	default:
		c, err := catalog.Default()
		return c, "embedded default", err
	}
}
