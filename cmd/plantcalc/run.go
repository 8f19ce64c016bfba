package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"Aquaquote/internal/calc/importer"
	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/catalog"
	"Aquaquote/internal/engine"
	"Aquaquote/internal/repo"
)

func loadEngine(ctx context.Context, g globalFlags) (*engine.Engine, error) {
	cat, _, err := repo.LoadCatalog(ctx, g.dsn, g.catalogPath)
	if err != nil {
		return nil, err
	}
	return engine.New(cat), nil
}

func runQuote(ctx context.Context, w io.Writer, g globalFlags, spec plant.Spec, table bool) error {
	eng, err := loadEngine(ctx, g)
	if err != nil {
		return err
	}
	s, ok := eng.ApplySpec(eng.Initial(), spec)
	if !ok {
		return fmt.Errorf("no quote: capacity must be positive and sizes within range")
	}
	if table {
		return printQuote(w, s.Snapshot())
	}
	return printJSON(w, s.Snapshot())
}

func runImport(ctx context.Context, w io.Writer, g globalFlags, path string) error {
	eng, err := loadEngine(ctx, g)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, skipped, err := importer.ParseWorkbook(f)
	if err != nil {
		return err
	}
	q := importer.QuoteAll(eng, rows)
	return printJSON(w, importer.Result{Count: len(q), Results: q, Skipped: skipped})
}

func runCatalog(ctx context.Context, w io.Writer, g globalFlags) error {
	eng, err := loadEngine(ctx, g)
	if err != nil {
		return err
	}
	return printJSON(w, eng.Catalog().Definition())
}

func runPushCatalog(ctx context.Context, w io.Writer, dsn, path string) error {
	if dsn == "" {
		return fmt.Errorf("--dsn or CATALOG_DSN is required")
	}
	var cat *catalog.Catalog
	var err error
	if path != "" {
		cat, err = catalog.LoadFile(path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return err
	}

	db, err := repo.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	r := repo.NewPostgresCatalogDB(db)
	if err := r.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("creating catalog tables: %w", err)
	}
	if err := r.SaveCatalog(ctx, cat.Definition()); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	fmt.Fprintf(w, "stored %d catalog items\n", cat.Len())
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
