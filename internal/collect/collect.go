// Package collect is the source-collection boundary: it materializes the
// two input collections, from files or live upstream clients, before any
// fusion starts.
package collect

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadscope/prospect-cli/internal/model"
)

// DirectorySource produces the directory-side collection.
type DirectorySource func(ctx context.Context) ([]model.DirectoryRecord, error)

// POISource produces the map/registry-side collection.
type POISource func(ctx context.Context) ([]model.POIRecord, error)

// FileDirectory returns a source reading from a JSON file.
func FileDirectory(path string) DirectorySource {
	return func(context.Context) ([]model.DirectoryRecord, error) {
		return LoadDirectory(path)
	}
}

// FilePOI returns a source reading from a JSON file.
func FilePOI(path string) POISource {
	return func(context.Context) ([]model.POIRecord, error) {
		return LoadPOIs(path)
	}
}

// Result holds both fully materialized collections.
type Result struct {
	Directory []model.DirectoryRecord
	POIs      []model.POIRecord
}

// Collector fetches both collections concurrently. Fusion never sees a
// partial collection: Collect returns only when both sources are done, and
// returns an error when either one fails.
type Collector struct {
	Directory DirectorySource
	POI       POISource
}

// Collect materializes both collections.
func (c Collector) Collect(ctx context.Context) (*Result, error) {
	var result Result

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := c.Directory(ctx)
		if err != nil {
			return err
		}
		result.Directory = records
		return nil
	})
	g.Go(func() error {
		records, err := c.POI(ctx)
		if err != nil {
			return err
		}
		result.POIs = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("collect: collections materialized",
		zap.Int("directory", len(result.Directory)),
		zap.Int("pois", len(result.POIs)))
	return &result, nil
}
