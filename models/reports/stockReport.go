package reports

import (
	"context"
	"math"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type LowStockProductRow struct {
	Id               int             `json:"id"`
	Name             string          `json:"name"`
	Threshold        decimal.Decimal `json:"threshold"`
	Quantity         decimal.Decimal `json:"quantity_in_stock"`
	AvgDailySales    float64         `json:"avg_daily_sales"`
	SuggestedReorder int             `json:"suggested_reorder"`
}

type ProductSoldRow struct {
	ProductId   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalSold   decimal.Decimal `json:"total_sold"`
}

type SlowMoverRow struct {
	Id        int             `json:"id"`
	Name      string          `json:"name"`
	Threshold decimal.Decimal `json:"threshold"`
	Quantity  decimal.Decimal `json:"quantity_in_stock"`
}

type TransferredOutRow struct {
	ProductId        int             `json:"product_id"`
	ProductName      string          `json:"product_name"`
	TotalTransferred decimal.Decimal `json:"total_transferred"`
}

type StockMovementRow struct {
	Date      string          `json:"date"`
	Restocked decimal.Decimal `json:"restocked"`
	Sold      decimal.Decimal `json:"sold"`
}

type StockReportResponse struct {
	StartDate             string                `json:"start_date"`
	EndDate               string                `json:"end_date"`
	TotalStockQty         decimal.Decimal       `json:"total_stock_qty"`
	TotalStockValue       decimal.Decimal       `json:"total_stock_value"`
	LowStockProducts      []*LowStockProductRow `json:"low_stock_products"`
	MostSoldItems         []*ProductSoldRow     `json:"most_sold_items"`
	SlowMovers            []*SlowMoverRow       `json:"slow_movers"`
	TransferredOutSummary []*TransferredOutRow  `json:"transferred_out_summary"`
	StockMovement         []*StockMovementRow   `json:"stock_movement"`
}

// GetStockReport reports shop inventory health over a date window: stock
// totals, low-stock lines with a 30-day-cover reorder suggestion driven by
// recent demand, fast and slow movers, material transfers to the workshop,
// and a restocked-vs-sold series.
func GetStockReport(ctx context.Context, fromDate *models.MyDateString, toDate *models.MyDateString) (*StockReportResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	start, end, err := reportDateRange(business, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	rangeStart, _ := utils.GetDayRange(start)
	_, rangeEnd := utils.GetDayRange(end)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	db := config.GetDB()

	totalQty, err := utils.SumColumn(
		db.WithContext(ctx).Model(&models.Product{}).Where("business_id = ?", businessId),
		"quantity")
	if err != nil {
		return nil, err
	}
	totalValue, err := utils.SumColumn(
		db.WithContext(ctx).Model(&models.Product{}).
			Where("business_id = ? AND quantity > 0", businessId),
		"buying_price * quantity")
	if err != nil {
		return nil, err
	}

	soldByProductSql := `
SELECT
    si.product_id,
    p.name AS product_name,
    SUM(si.quantity) AS total_sold
FROM
    sale_items AS si
        JOIN
    sales AS s ON s.id = si.sale_id AND s.business_id = si.business_id
        JOIN
    products AS p ON p.id = si.product_id AND p.business_id = si.business_id
WHERE
    si.business_id = @businessId
        AND s.status = 'confirmed'
        AND s.sale_date BETWEEN @rangeStart AND @rangeEnd
GROUP BY si.product_id , p.name
ORDER BY total_sold DESC;
`
	var soldRows []*ProductSoldRow
	if err := db.WithContext(ctx).Raw(soldByProductSql, map[string]interface{}{
		"businessId": businessId,
		"rangeStart": rangeStart,
		"rangeEnd":   rangeEnd,
	}).Scan(&soldRows).Error; err != nil {
		return nil, err
	}
	soldByProduct := map[int]decimal.Decimal{}
	for _, r := range soldRows {
		soldByProduct[r.ProductId] = r.TotalSold
	}

	var lowStock []*models.Product
	if err := db.WithContext(ctx).Model(&models.Product{}).
		Where("business_id = ? AND quantity <= threshold", businessId).
		Order("quantity").
		Find(&lowStock).Error; err != nil {
		return nil, err
	}
	lowStockRows := make([]*LowStockProductRow, 0, len(lowStock))
	for _, p := range lowStock {
		sold := soldByProduct[p.ID]
		avgDaily, _ := sold.Div(decimal.NewFromInt(int64(days))).Float64()
		// target 30 days of cover from recent demand
		qty, _ := p.Quantity.Float64()
		suggested := int(math.Round(avgDaily*30 - qty))
		if suggested < 0 {
			suggested = 0
		}
		lowStockRows = append(lowStockRows, &LowStockProductRow{
			Id:               p.ID,
			Name:             p.Name,
			Threshold:        p.Threshold,
			Quantity:         p.Quantity,
			AvgDailySales:    avgDaily,
			SuggestedReorder: suggested,
		})
	}

	mostSold := soldRows
	if len(mostSold) > 10 {
		mostSold = mostSold[:10]
	}

	slowMoversSqlT := `
SELECT
    p.id,
    p.name,
    p.threshold,
    p.quantity
FROM
    products AS p
WHERE
    p.business_id = @businessId
        AND p.quantity > 0
        {{- if .hasSales }} AND p.id NOT IN @soldProductIds {{- end }}
ORDER BY p.id
LIMIT 50;
`
	soldProductIds := make([]int, 0, len(soldRows))
	for _, r := range soldRows {
		soldProductIds = append(soldProductIds, r.ProductId)
	}
	slowMoversSql, err := utils.ExecTemplate(slowMoversSqlT, map[string]interface{}{
		"hasSales": len(soldProductIds) > 0,
	})
	if err != nil {
		return nil, err
	}
	var slowMovers []*SlowMoverRow
	if err := db.WithContext(ctx).Raw(slowMoversSql, map[string]interface{}{
		"businessId":     businessId,
		"soldProductIds": soldProductIds,
	}).Scan(&slowMovers).Error; err != nil {
		return nil, err
	}

	// transferred_out entries carry negative deltas; flip the sign for display
	transferredOutSql := `
SELECT
    se.product_id,
    p.name AS product_name,
    SUM(-se.quantity) AS total_transferred
FROM
    stock_entries AS se
        JOIN
    products AS p ON p.id = se.product_id AND p.business_id = se.business_id
WHERE
    se.business_id = @businessId
        AND se.entry_type = 'transferred_out'
        AND se.created_at BETWEEN @rangeStart AND @rangeEnd
GROUP BY se.product_id , p.name
ORDER BY total_transferred DESC;
`
	var transferredOut []*TransferredOutRow
	if err := db.WithContext(ctx).Raw(transferredOutSql, map[string]interface{}{
		"businessId": businessId,
		"rangeStart": rangeStart,
		"rangeEnd":   rangeEnd,
	}).Scan(&transferredOut).Error; err != nil {
		return nil, err
	}

	restockTypes := []models.StockEntryType{
		models.StockEntryTypeAdded, models.StockEntryTypeReceived, models.StockEntryTypeTransferredIn,
	}
	var movement []*StockMovementRow
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayStart, dayEnd := utils.GetDayRange(day)

		restocked, err := utils.SumColumn(
			db.WithContext(ctx).Model(&models.StockEntry{}).
				Where("business_id = ? AND entry_type IN ? AND created_at BETWEEN ? AND ?",
					businessId, restockTypes, dayStart, dayEnd),
			"quantity")
		if err != nil {
			return nil, err
		}
		sold, err := utils.SumColumn(
			db.WithContext(ctx).Model(&models.SaleItem{}).
				Joins("JOIN sales ON sales.id = sale_items.sale_id AND sales.business_id = sale_items.business_id").
				Where("sale_items.business_id = ? AND sales.status = ? AND sales.sale_date BETWEEN ? AND ?",
					businessId, models.SaleStatusConfirmed, dayStart, dayEnd),
			"sale_items.quantity")
		if err != nil {
			return nil, err
		}
		if restocked.IsZero() && sold.IsZero() {
			continue
		}
		movement = append(movement, &StockMovementRow{
			Date:      day.Format("2006-01-02"),
			Restocked: restocked,
			Sold:      sold,
		})
	}

	return &StockReportResponse{
		StartDate:             start.Format("2006-01-02"),
		EndDate:               end.Format("2006-01-02"),
		TotalStockQty:         totalQty,
		TotalStockValue:       totalValue,
		LowStockProducts:      lowStockRows,
		MostSoldItems:         mostSold,
		SlowMovers:            slowMovers,
		TransferredOutSummary: transferredOut,
		StockMovement:         movement,
	}, nil
}
