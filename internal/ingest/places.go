package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/travelrec/pkg/types"
)

// Required CSV columns
const (
	colID       = "Place_Id"
	colName     = "Place_Name"
	colCategory = "Category"
	colCity     = "City"
	colPrice    = "Price"
	colRating   = "Rating"
)

const (
	imageURLPrefix   = "https://dummyimage.com/600x400/008080/ffffff&text="
	initialSentiment = 0.5
)

// ImageURL returns the placeholder image url for a place name
func ImageURL(name string) string {
	return imageURLPrefix + strings.ReplaceAll(name, " ", "+")
}

// ImportPlacesCSV imports places from a CSV file
func (in *Ingester) ImportPlacesCSV(ctx context.Context, path string, batchSize int) (*Statistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open places csv: %w", err)
	}
	defer f.Close()

	return in.ImportPlaces(ctx, bufio.NewReader(f), batchSize)
}

// ImportPlaces reads CSV rows and upserts them in batched transactions.
// Rows that fail to parse are counted and reported, not fatal.
func (in *Ingester) ImportPlaces(ctx context.Context, r io.Reader, batchSize int) (*Statistics, error) {
	start := time.Now()
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	batch := make([]*types.Place, 0, batchSize)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			stats.RowsFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		place, err := parsePlace(record, cols)
		if err != nil {
			stats.RowsFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		batch = append(batch, place)

		if len(batch) >= batchSize {
			if err := in.upsertBatch(ctx, batch); err != nil {
				return nil, err
			}
			stats.PlacesImported += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := in.upsertBatch(ctx, batch); err != nil {
			return nil, err
		}
		stats.PlacesImported += len(batch)
	}

	stats.Duration = time.Since(start)
	in.log.Info().
		Int("imported", stats.PlacesImported).
		Int("failed", stats.RowsFailed).
		Dur("duration", stats.Duration).
		Msg("places imported")
	return stats, nil
}

// upsertBatch writes places within a single transaction
func (in *Ingester) upsertBatch(ctx context.Context, places []*types.Place) error {
	tx, err := in.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range places {
		if err := tx.UpsertPlace(ctx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, c := range []string{colID, colName, colCategory, colCity, colPrice, colRating} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return cols, nil
}

func parsePlace(record []string, cols map[string]int) (*types.Place, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing %s", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	raw := make(map[string]string, 6)
	for _, c := range []string{colID, colName, colCategory, colCity, colPrice, colRating} {
		v, err := field(c)
		if err != nil {
			return nil, err
		}
		raw[c] = v
	}

	id, err := strconv.ParseInt(raw[colID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", colID, raw[colID])
	}
	price, err := strconv.Atoi(raw[colPrice])
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", colPrice, raw[colPrice])
	}
	rating, err := strconv.ParseFloat(raw[colRating], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", colRating, raw[colRating])
	}

	place := &types.Place{
		ID:           id,
		Name:         raw[colName],
		Category:     raw[colCategory],
		City:         raw[colCity],
		Price:        price,
		Rating:       rating,
		ImageURL:     ImageURL(raw[colName]),
		SentimentAvg: types.Float64(initialSentiment),
	}
	if err := place.Validate(); err != nil {
		return nil, fmt.Errorf("place %d: %w", id, err)
	}
	return place, nil
}
