// Command seed-db fills a database with demo accounts and a catalog of
// services across every category, so the API has something to sell right
// after a fresh deploy.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/repository"
)

const servicesPerCategory = 5

func main() {
	var (
		databaseURL  string
		apiKeyPepper string
		seed         int64
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or WED_API_KEY_PEPPER env)")
	flag.Int64Var(&seed, "seed", 0, "faker seed for reproducible data (0 = random)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("WED_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKeyPepper, seed); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, pepper string, seed int64) error {
	faker := gofakeit.New(uint64(seed))

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	vendors, err := seedAccounts(ctx, pool, faker, pepper)
	if err != nil {
		return errors.Wrap(err, "seed accounts")
	}

	if err := seedCatalog(ctx, pool, faker, vendors); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	return nil
}

// seedAccounts creates one customer, one staff user and a set of vendors,
// each with an API key derived from a predictable plain key. The plain keys
// are printed so the demo accounts are usable immediately.
func seedAccounts(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, pepper string) ([]uuid.UUID, error) {
	accounts := []struct {
		key   string
		name  string
		email string
		role  string
	}{
		{"demo-customer-key", faker.Name(), "customer@example.com", "customer"},
		{"demo-staff-key", faker.Name(), "staff@example.com", "staff"},
		{"demo-vendor-1-key", faker.Company(), "vendor1@example.com", "vendor"},
		{"demo-vendor-2-key", faker.Company(), "vendor2@example.com", "vendor"},
		{"demo-vendor-3-key", faker.Company(), "vendor3@example.com", "vendor"},
	}

	var vendors []uuid.UUID
	for _, a := range accounts {
		id := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, email, phone, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			`, id, a.name, a.email, faker.Phone(), a.role)
		if err != nil {
			return nil, errors.Wrapf(err, "upsert user %s", a.email)
		}

		// ON CONFLICT may have kept an earlier row; read the real id back.
		if err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, a.email).Scan(&id); err != nil {
			return nil, errors.Wrapf(err, "fetch user %s", a.email)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO api_keys (id, key_hash, user_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (key_hash) DO NOTHING
			`, uuid.New(), hashKey(a.key, pepper), id)
		if err != nil {
			return nil, errors.Wrapf(err, "insert api key for %s", a.email)
		}

		if a.role == "vendor" {
			vendors = append(vendors, id)
		}

		slog.Info("seeded account",
			slog.String("email", a.email),
			slog.String("role", a.role),
			slog.String("api_key", a.key))
	}

	return vendors, nil
}

// seedCatalog inserts services into every category table, spreading them over
// the seeded vendors and leaving every fifth service vendorless.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, vendors []uuid.UUID) error {
	for i, category := range catalog.Categories() {
		schema, err := catalog.SchemaFor(category)
		if err != nil {
			return err
		}
		for j := 0; j < servicesPerCategory; j++ {
			var vendor *uuid.UUID
			if n := i*servicesPerCategory + j; n%5 != 4 && len(vendors) > 0 {
				vendor = &vendors[n%len(vendors)]
			}

			name := fmt.Sprintf("%s %s", faker.Company(), schema.DisplayName)
			location := faker.City()
			rating := faker.Float64Range(3.0, 5.0)

			var err error
			switch schema.PriceKind {
			case catalog.PriceRange:
				low := decimal.NewFromInt(int64(faker.Number(10, 80)) * 1000)
				high := low.Add(decimal.NewFromInt(int64(faker.Number(5, 40)) * 1000))
				_, err = pool.Exec(ctx, fmt.Sprintf(`
					INSERT INTO %s (name, location, rating, price_range_min, price_range_max, vendor_id)
					VALUES ($1, $2, $3, $4, $5, $6)
					`, schema.Table), name, location, rating, low, high, vendor)

			case catalog.PricePerUnit:
				perPlate := decimal.NewFromInt(int64(faker.Number(3, 25)) * 100)
				_, err = pool.Exec(ctx, fmt.Sprintf(`
					INSERT INTO %s (name, location, rating, price_per_plate, vendor_id)
					VALUES ($1, $2, $3, $4, $5)
					`, schema.Table), name, location, rating, perPlate, vendor)

			default:
				price := decimal.NewFromInt(int64(faker.Number(5, 200)) * 1000)
				_, err = pool.Exec(ctx, fmt.Sprintf(`
					INSERT INTO %s (name, location, rating, price, vendor_id)
					VALUES ($1, $2, $3, $4, $5)
					`, schema.Table), name, location, rating, price, vendor)
			}
			if err != nil {
				return errors.Wrapf(err, "insert into %s", schema.Table)
			}
		}

		slog.Info("seeded category",
			slog.String("category", string(schema.Category)),
			slog.Int("count", servicesPerCategory))
	}

	return nil
}

func hashKey(key, pepper string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}
