// Command coupon-import bulk-loads promo codes from gzipped code lists
// (one code per line, as exported by marketing tools) into the coupons
// table. A Bloom filter keeps cross-file deduplication memory-bounded for
// very large exports; duplicates within the false-positive rate are caught
// by the table's ON CONFLICT clause.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gamergoods/storefront/internal/domain/coupon"
	"github.com/gamergoods/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	batchSize     = 5_000
	minCodeLen    = 4
	maxCodeLen    = 32
)

func main() {
	var (
		dataDir     string
		databaseURL string
		value       string
		description string
		maxUses     int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz code list files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&value, "value", "10", "percentage discount applied to imported codes")
	flag.StringVar(&description, "description", "Valid promo code: 10% off", "description stored with imported codes")
	flag.IntVar(&maxUses, "max-uses", 1, "allowed uses per imported code (0 = unlimited)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rule := coupon.Rule{
		DiscountType: coupon.DiscountPercentage,
		Value:        decimal.RequireFromString(value),
		Description:  description,
		MaxUses:      maxUses,
	}

	if err := run(ctx, dataDir, databaseURL, rule); err != nil {
		slog.Error("coupon import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, rule coupon.Rule) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no .gz files found in %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			n, err := importFile(gctx, pool, file, rule, seen, &mu)
			if err != nil {
				return errors.Wrapf(err, "import %s", file)
			}
			slog.Info("imported file", slog.String("file", file), slog.Int("codes", n))
			return nil
		})
	}
	return g.Wait()
}

type execer interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func importFile(ctx context.Context, pool execer, path string, rule coupon.Rule, seen *bloom.BloomFilter, mu *sync.Mutex) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	insertSQL := `INSERT INTO coupons (code, discount_type, value, description, max_uses)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (code) DO NOTHING`

	total := 0
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "send batch")
		}
		batch = &pgx.Batch{}
		return nil
	}

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		code := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if len(code) < minCodeLen || len(code) > maxCodeLen {
			continue
		}

		mu.Lock()
		dup := seen.TestOrAddString(code)
		mu.Unlock()
		if dup {
			continue
		}

		batch.Queue(insertSQL,
			code, string(rule.DiscountType), rule.Value, rule.Description, rule.MaxUses,
		)
		total++

		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, errors.Wrap(err, "scan")
	}

	return total, flush()
}
