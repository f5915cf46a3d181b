package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/mariel-soto/brewhaus-backend/internal/inventory"
	"github.com/mariel-soto/brewhaus-backend/internal/risk"
	"github.com/mariel-soto/brewhaus-backend/pkg/config"
	"github.com/mariel-soto/brewhaus-backend/pkg/db"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
)

// opstool is the counter staff's escape hatch: stock reports, per-order
// ledger inspection, blacklist review and release.
func main() {
	logg := logger.New(logger.Options{ServiceName: "opstool"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "low-stock", "command: low-stock|order-ledger|restock|blacklist|release")
	orderID := flag.String("order", "", "order id (for order-ledger)")
	ingredientID := flag.String("ingredient", "", "ingredient id (for restock)")
	qty := flag.String("qty", "", "restock quantity in base units (for restock)")
	entryID := flag.String("entry", "", "blacklist entry id (for release)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	fatalOnErr(ctx, logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "opstool",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	fatalOnErr(ctx, logg, "connect database", err)
	defer dbClient.Close()

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient)
	fatalOnErr(ctx, logg, "build inventory service", err)

	riskService, err := risk.NewService(risk.NewRepository(dbClient.DB()), dbClient)
	fatalOnErr(ctx, logg, "build risk service", err)

	switch *cmd {
	case "low-stock":
		err = printLowStock(ctx, inventoryService)
	case "order-ledger":
		err = printOrderLedger(ctx, inventoryService, *orderID)
	case "restock":
		err = runRestock(ctx, inventoryService, *ingredientID, *qty)
	case "blacklist":
		err = printBlacklist(ctx, riskService)
	case "release":
		err = runRelease(ctx, riskService, *entryID)
	default:
		err = fmt.Errorf("unknown command %q", *cmd)
	}
	fatalOnErr(ctx, logg, *cmd, err)
}

func printLowStock(ctx context.Context, svc inventory.Service) error {
	rows, err := svc.LowStock(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Ingredient", "Unit", "Stock", "Min Stock")
	for _, row := range rows {
		table.Append(
			row.ID.String(),
			row.Name,
			string(row.Unit),
			strconv.FormatInt(row.Stock, 10),
			strconv.FormatInt(row.MinStock, 10),
		)
	}
	return table.Render()
}

func printOrderLedger(ctx context.Context, svc inventory.Service, rawOrderID string) error {
	id, err := uuid.Parse(rawOrderID)
	if err != nil {
		return fmt.Errorf("invalid -order id: %w", err)
	}

	rows, err := svc.LedgerForOrder(ctx, id)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Ingredient ID", "Delta", "Reason", "At")
	for _, row := range rows {
		table.Append(
			row.IngredientID.String(),
			strconv.FormatInt(row.Delta, 10),
			string(row.Reason),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return table.Render()
}

func runRestock(ctx context.Context, svc inventory.Service, rawIngredientID, rawQty string) error {
	id, err := uuid.Parse(rawIngredientID)
	if err != nil {
		return fmt.Errorf("invalid -ingredient id: %w", err)
	}
	qty, err := strconv.ParseInt(rawQty, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid -qty: %w", err)
	}

	if err := svc.Restock(ctx, id, qty); err != nil {
		return err
	}
	fmt.Printf("restocked %s by %d\n", id, qty)
	return nil
}

func printBlacklist(ctx context.Context, svc risk.Service) error {
	rows, err := svc.ListActive(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Entry ID", "Customer", "Reason", "Cancellations", "No-Shows")
	for _, row := range rows {
		customer := ""
		if row.CustomerID != nil {
			customer = row.CustomerID.String()
		}
		table.Append(
			row.ID.String(),
			customer,
			row.Reason,
			strconv.FormatInt(row.CancellationCount, 10),
			strconv.FormatInt(row.NoShowCount, 10),
		)
	}
	return table.Render()
}

func runRelease(ctx context.Context, svc risk.Service, rawEntryID string) error {
	id, err := uuid.Parse(rawEntryID)
	if err != nil {
		return fmt.Errorf("invalid -entry id: %w", err)
	}
	if err := svc.Release(ctx, id); err != nil {
		return err
	}
	fmt.Printf("released blacklist entry %s\n", id)
	return nil
}

func fatalOnErr(ctx context.Context, logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "opstool "+what+" failed", err)
	os.Exit(1)
}
