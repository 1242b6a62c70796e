package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inventory-ledger/internal/config"
	"inventory-ledger/internal/database"
	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/logger"
	"inventory-ledger/internal/repository"
	"inventory-ledger/internal/service"
	"inventory-ledger/migrations"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const seedDays = 365

var catalog = []domain.NewProduct{
	{Name: "iPhone 15 Pro", Description: "Latest Apple smartphone", Price: decimal.RequireFromString("999.99"), Category: "Electronics", SKU: "APPL-IP15P-001"},
	{Name: "Samsung Galaxy S24", Description: "Android flagship phone", Price: decimal.RequireFromString("899.99"), Category: "Electronics", SKU: "SAMS-GS24-001"},
	{Name: "MacBook Air M3", Description: "Apple laptop with M3 chip", Price: decimal.RequireFromString("1299.99"), Category: "Electronics", SKU: "APPL-MBA-M3"},
	{Name: "Dell XPS 13", Description: "Premium Windows laptop", Price: decimal.RequireFromString("1099.99"), Category: "Electronics", SKU: "DELL-XPS13-001"},
	{Name: "Sony WH-1000XM5", Description: "Noise canceling headphones", Price: decimal.RequireFromString("399.99"), Category: "Electronics", SKU: "SONY-WH1000XM5"},
	{Name: "Nike Air Max 270", Description: "Popular running shoes", Price: decimal.RequireFromString("129.99"), Category: "Footwear", SKU: "NIKE-AM270-001"},
	{Name: "Adidas Ultraboost 22", Description: "Premium running shoes", Price: decimal.RequireFromString("179.99"), Category: "Footwear", SKU: "ADID-UB22-001"},
	{Name: "Instant Pot Duo 7-in-1", Description: "Multi-use pressure cooker", Price: decimal.RequireFromString("79.99"), Category: "Home & Kitchen", SKU: "INST-DUO7-001"},
	{Name: "Ninja Foodi Air Fryer", Description: "Air fryer and pressure cooker", Price: decimal.RequireFromString("199.99"), Category: "Home & Kitchen", SKU: "NINJ-FOODI-001"},
	{Name: "Fitbit Charge 5", Description: "Advanced fitness tracker", Price: decimal.RequireFromString("149.99"), Category: "Health & Fitness", SKU: "FITB-CHG5-001"},
	{Name: "Apple Watch Series 9", Description: "Latest Apple smartwatch", Price: decimal.RequireFromString("399.99"), Category: "Health & Fitness", SKU: "APPL-AW9-001"},
	{Name: "Levi's 501 Original Jeans", Description: "Classic denim jeans", Price: decimal.RequireFromString("59.99"), Category: "Clothing", SKU: "LEVI-501-001"},
	{Name: "Champion Powerblend Hoodie", Description: "Comfortable cotton hoodie", Price: decimal.RequireFromString("39.99"), Category: "Clothing", SKU: "CHAMP-PB-HOOD"},
	{Name: "Kindle Paperwhite", Description: "Waterproof e-reader", Price: decimal.RequireFromString("139.99"), Category: "Electronics", SKU: "AMZN-KPW-001"},
	{Name: "Echo Dot (5th Gen)", Description: "Smart speaker with Alexa", Price: decimal.RequireFromString("49.99"), Category: "Electronics", SKU: "AMZN-ECHO-DOT5"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.NewWithDefaults(cfg.Server.Env, cfg.Server.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	dbService, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = dbService.Close() }()

	db := dbService.DB()
	if err := database.RunMigrations(db, migrations.FS, log); err != nil {
		return err
	}
	status, err := database.GetMigrationStatus(db, migrations.FS)
	if err != nil {
		return err
	}
	if status.Pending() {
		return fmt.Errorf("schema at version %d, expected %d", status.Current, status.Latest)
	}

	if _, err := db.ExecContext(ctx,
		"TRUNCATE inventory_history, sales, inventory, products RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("failed to clear existing data: %w", err)
	}
	log.Info("Cleared existing data")

	repos := repository.NewRepositories(db)
	tx := repository.NewTransactor(db, cfg.Ledger.LockTimeout)
	products := service.NewProductService(tx, repos, cfg.Ledger.MaxConflictRetries, log)
	inventory := service.NewInventoryService(tx, repos, cfg.Ledger.MaxConflictRetries, log)

	created := make([]*domain.ProductDetail, 0, len(catalog))
	for _, np := range catalog {
		np.InitialStock = 1500 + rand.Intn(2500)
		np.ReorderLevel = 10 + rand.Intn(50)
		detail, err := products.CreateProduct(ctx, np)
		if err != nil {
			return fmt.Errorf("failed to create product %s: %w", np.SKU, err)
		}
		created = append(created, detail)
	}
	log.Info("Seeded products", zap.Int("count", len(created)))

	platforms := []domain.Platform{domain.PlatformAmazon, domain.PlatformWalmart}
	soldOut := make(map[int64]bool)
	start := time.Now().UTC().AddDate(0, 0, -seedDays)
	salesCount := 0

	for day := 0; day < seedDays; day++ {
		date := start.AddDate(0, 0, day)
		for j, n := 0, 5+rand.Intn(20); j < n; j++ {
			p := created[rand.Intn(len(created))]
			if soldOut[p.ID] {
				continue
			}

			customerID := "CUST_" + strings.ToUpper(uuid.NewString()[:8])
			_, err := inventory.RecordSale(ctx, domain.NewSale{
				ProductID:  p.ID,
				Quantity:   1 + rand.Intn(5),
				UnitPrice:  p.Price,
				SaleDate:   date.Add(time.Duration(rand.Intn(86400)) * time.Second),
				Platform:   platforms[rand.Intn(len(platforms))],
				CustomerID: &customerID,
			})
			switch {
			case errors.Is(err, domain.ErrInsufficientStock):
				soldOut[p.ID] = true
				log.Info("Product sold out, no further sales", zap.String("sku", p.SKU), zap.Time("date", date))
			case err != nil:
				return fmt.Errorf("failed to record sale: %w", err)
			default:
				salesCount++
			}
		}
	}

	log.Info("Demo data seeded successfully",
		zap.Int("products", len(created)),
		zap.Int("sales", salesCount),
		zap.Int("sold_out", len(soldOut)),
	)
	return nil
}
