// inventory-rebuild recomputes products.quantity from the signed stock entry
// ledger and reports any drift. The ledger is the source of truth; the cached
// quantity on the product row only exists for cheap low-stock filtering.
//
// Usage:
//   go run ./cmd/inventory-rebuild --business-id=<uuid> [--product-id=N] [--apply]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/config"
)

func main() {
	businessID := flag.String("business-id", "", "Required: business id (uuid)")
	productID := flag.Int("product-id", 0, "Optional: limit to one product")
	apply := flag.Bool("apply", false, "Write corrected quantities (default is report only)")
	continueOnError := flag.Bool("continue-on-error", false, "Skip failing products and continue")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "--business-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	type row struct {
		ProductId int
		Name      string
		Cached    decimal.Decimal
		Ledger    decimal.Decimal
	}
	var rows []row
	q := `
		SELECT p.id AS product_id, p.name, p.quantity AS cached,
		       COALESCE(SUM(se.quantity), 0) AS ledger
		FROM products p
		LEFT JOIN stock_entries se ON se.product_id = p.id AND se.business_id = p.business_id
		WHERE p.business_id = @businessId`
	if *productID > 0 {
		q += ` AND p.id = @productId`
	}
	q += ` GROUP BY p.id, p.name, p.quantity`
	if err := db.Raw(q, map[string]interface{}{
		"businessId": *businessID,
		"productId":  *productID,
	}).Scan(&rows).Error; err != nil {
		fmt.Fprintf(os.Stderr, "discover products: %v\n", err)
		os.Exit(1)
	}

	drifted := 0
	for _, r := range rows {
		if r.Cached.Equal(r.Ledger) {
			continue
		}
		drifted++
		fmt.Printf("drift product=%d %q cached=%s ledger=%s\n",
			r.ProductId, r.Name, r.Cached.String(), r.Ledger.String())
		if !*apply {
			continue
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec(
				"UPDATE products SET quantity = ? WHERE id = ? AND business_id = ?",
				r.Ledger, r.ProductId, *businessID,
			).Error
		}); err != nil {
			if *continueOnError {
				fmt.Fprintf(os.Stderr, "rebuild failed (skipping): %v\n", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
			os.Exit(1)
		}
	}

	if drifted == 0 {
		fmt.Println("no drift; cached quantities match the ledger")
	} else if *apply {
		fmt.Printf("corrected %d product(s)\n", drifted)
	} else {
		fmt.Printf("%d product(s) drifted; rerun with --apply to correct\n", drifted)
	}
}
