package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ppa/pkg/config"
	"ppa/pkg/database"
	"ppa/pkg/ingest"
	"ppa/pkg/models"
)

var errNoSources = errors.New("no datasets: set --company and --competitor, or --dsn")

type source struct {
	name       string
	path       string
	table      string
	competitor bool
}

func (s source) columns() []string {
	if s.competitor {
		return models.BaseColumns
	}
	return models.CompanyColumns
}

// loadSources reads the company and competitor datasets concurrently, from files or from
// tables behind one DSN. done is called once per loaded dataset.
func loadSources(ctx context.Context, src config.SourcesConfig, log *zap.Logger, done func()) (company, competitor []models.RawRecord, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if src.DSN == "" && (src.Company == "" || src.Competitor == "") {
		return nil, nil, errNoSources
	}

	var db *sqlx.DB
	if src.DSN != "" {
		var dsnUsed string
		db, dsnUsed, err = database.Open(src.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		log.Debug("connected", zap.String("dsn", dsnUsed))
	}

	sources := []source{
		{name: "company", path: src.Company, table: src.CompanyTable},
		{name: "competitor", path: src.Competitor, table: src.CompetitorTable, competitor: true},
	}
	results := make([][]models.RawRecord, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		g.Go(func() error {
			rows, err := load(gctx, db, s)
			if err != nil {
				return fmt.Errorf("%s data: %w", s.name, err)
			}
			log.Info("dataset loaded", zap.String("dataset", s.name), zap.Int("rows", len(rows)))
			results[i] = rows
			if done != nil {
				done()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results[0], results[1], nil
}

// load prefers a file when one is given, else the DSN table. Table columns are
// enforced by the SELECT, file headers by RequireColumns.
func load(ctx context.Context, db *sqlx.DB, s source) ([]models.RawRecord, error) {
	if s.path != "" {
		rows, err := ingest.ReadFile(s.path)
		if err != nil {
			return nil, err
		}
		return rows, ingest.RequireColumns(rows, s.columns())
	}
	if db == nil {
		return nil, errNoSources
	}
	return database.LoadSKUs(ctx, db, s.table, s.competitor)
}
