package reports

import (
	"context"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardMetricsResponse struct {
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type MonthlySalesResponse struct {
	Sales []decimal.Decimal `json:"sales"`
}

type SalesSummaryResponse struct {
	MonthlyRevenue    decimal.Decimal `json:"monthly_revenue"`
	MonthlySalesCount int64           `json:"monthly_sales_count"`
	TodaysRevenue     decimal.Decimal `json:"todays_revenue"`
	PrevMonthRevenue  decimal.Decimal `json:"prev_month_revenue"`
	ProgressPercent   float64         `json:"progress_percent"`
}

type RecentLoginRow struct {
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login"`
}

type WorkshopDashboardResponse struct {
	DailySales                decimal.Decimal `json:"daily_sales"`
	RepairRevenueToday        decimal.Decimal `json:"repair_revenue_today"`
	WorkshopMaterialsPaidToday decimal.Decimal `json:"workshop_materials_paid_today"`
	WorkshopIncomeToday       decimal.Decimal `json:"workshop_income_today"`
	LowStockCount             int64           `json:"low_stock_count"`
	PendingRepairs            int64           `json:"pending_repairs"`
	CompletedRepairsToday     int64           `json:"completed_repairs_today"`
	PendingTransfersCount     int64           `json:"pending_transfers_count"`
	PendingTransferAmount     decimal.Decimal `json:"pending_transfer_amount"`
}

// validSales is the dashboard's base sale scope: refunded sales fall out.
func validSales(ctx context.Context, businessId string, unitId *int) *gorm.DB {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&models.Sale{}).
		Where("business_id = ? AND status <> ?", businessId, models.SaleStatusRefunded)
	if unitId != nil && *unitId != 0 {
		q = q.Where("unit_id = ?", *unitId)
	}
	return q
}

func GetDashboardMetrics(ctx context.Context, unitId *int) (*DashboardMetricsResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	var count int64
	if err := validSales(ctx, businessId, unitId).Count(&count).Error; err != nil {
		return nil, err
	}
	revenue, err := utils.SumColumn(validSales(ctx, businessId, unitId), "paid_amount")
	if err != nil {
		return nil, err
	}
	return &DashboardMetricsResponse{TotalSales: count, TotalRevenue: revenue}, nil
}

// GetMonthlySales returns collected revenue per calendar month of the current
// year, January first, zeros where nothing was sold.
func GetMonthlySales(ctx context.Context, unitId *int) (*MonthlySalesResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	location, err := time.LoadLocation(business.Timezone)
	if err != nil {
		location = time.UTC
	}
	now := time.Now().In(location)

	sales := make([]decimal.Decimal, 12)
	for month := time.January; month <= time.December; month++ {
		start := time.Date(now.Year(), month, 1, 0, 0, 0, 0, location)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

		q := validSales(ctx, businessId, unitId).
			Where("sale_date BETWEEN ? AND ?", start.UTC(), end.UTC())
		total, err := utils.SumColumn(q, "paid_amount")
		if err != nil {
			return nil, err
		}
		sales[int(month)-1] = total
	}
	return &MonthlySalesResponse{Sales: sales}, nil
}

func GetSalesSummary(ctx context.Context, unitId *int) (*SalesSummaryResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	monthStart, monthEnd := utils.GetThisMonthRange()
	prevStart, prevEnd := utils.GetPreviousMonthRange()

	day, err := utils.ConvertToDate(time.Now(), business.Timezone)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := utils.GetDayRange(day)

	monthlyRevenue, err := utils.SumColumn(
		validSales(ctx, businessId, unitId).Where("sale_date BETWEEN ? AND ?", monthStart, monthEnd),
		"paid_amount")
	if err != nil {
		return nil, err
	}

	var monthlyCount int64
	if err := validSales(ctx, businessId, unitId).
		Where("sale_date BETWEEN ? AND ?", monthStart, monthEnd).
		Count(&monthlyCount).Error; err != nil {
		return nil, err
	}

	prevRevenue, err := utils.SumColumn(
		validSales(ctx, businessId, unitId).Where("sale_date BETWEEN ? AND ?", prevStart, prevEnd),
		"paid_amount")
	if err != nil {
		return nil, err
	}

	todaysRevenue, err := utils.SumColumn(
		validSales(ctx, businessId, unitId).Where("sale_date BETWEEN ? AND ?", dayStart, dayEnd),
		"paid_amount")
	if err != nil {
		return nil, err
	}

	progress := 0.0
	if prevRevenue.IsZero() {
		if monthlyRevenue.IsPositive() {
			progress = 100.0
		}
	} else {
		p, _ := monthlyRevenue.Sub(prevRevenue).Div(prevRevenue).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		progress = p
	}

	return &SalesSummaryResponse{
		MonthlyRevenue:    monthlyRevenue,
		MonthlySalesCount: monthlyCount,
		TodaysRevenue:     todaysRevenue,
		PrevMonthRevenue:  prevRevenue,
		ProgressPercent:   progress,
	}, nil
}

func GetRecentSales(ctx context.Context, unitId *int) ([]*models.Sale, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	var sales []*models.Sale
	if err := validSales(ctx, businessId, unitId).
		Preload("Items").
		Order("sale_date DESC").
		Limit(10).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func GetRecentLogins(ctx context.Context) ([]*RecentLoginRow, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	db := config.GetDB()
	var rows []*RecentLoginRow
	if err := db.WithContext(ctx).Model(&models.User{}).
		Select("username", "role", "last_login").
		Where("business_id = ? AND last_login IS NOT NULL", businessId).
		Order("last_login DESC").
		Limit(5).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetWorkshopDashboard is the combined shop/workshop KPI strip: today's shop
// takings, today's repair revenue and materials spend, backlog counts, and
// the open transfer debt between the units.
func GetWorkshopDashboard(ctx context.Context) (*WorkshopDashboardResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	shop, err := models.GetUnitByCode(ctx, models.UnitCodeShop)
	if err != nil {
		return nil, err
	}
	workshop, err := models.GetUnitByCode(ctx, models.UnitCodeWorkshop)
	if err != nil {
		return nil, err
	}

	day, err := utils.ConvertToDate(time.Now(), business.Timezone)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := utils.GetDayRange(day)

	db := config.GetDB()

	dailySales, err := utils.SumColumn(
		db.WithContext(ctx).Model(&models.Sale{}).
			Where("business_id = ? AND unit_id = ? AND status <> ? AND sale_date BETWEEN ? AND ?",
				businessId, shop.ID, models.SaleStatusRefunded, dayStart, dayEnd),
		"paid_amount")
	if err != nil {
		return nil, err
	}

	var lowStock int64
	if err := db.WithContext(ctx).Model(&models.Product{}).
		Where("business_id = ? AND quantity <= threshold", businessId).
		Count(&lowStock).Error; err != nil {
		return nil, err
	}

	var pendingRepairs int64
	if err := db.WithContext(ctx).Model(&models.RepairJob{}).
		Where("business_id = ? AND unit_id = ? AND status NOT IN ?",
			businessId, workshop.ID,
			[]models.RepairJobStatus{models.RepairJobStatusCompleted, models.RepairJobStatusCollected, models.RepairJobStatusCancelled}).
		Count(&pendingRepairs).Error; err != nil {
		return nil, err
	}

	var completedToday int64
	if err := db.WithContext(ctx).Model(&models.RepairJob{}).
		Where("business_id = ? AND unit_id = ? AND completed_date BETWEEN ? AND ?",
			businessId, workshop.ID, dayStart, dayEnd).
		Count(&completedToday).Error; err != nil {
		return nil, err
	}

	repairRevenue, err := utils.SumColumn(
		db.WithContext(ctx).Model(&models.RepairPayment{}).
			Joins("JOIN repair_invoices ON repair_invoices.id = repair_payments.invoice_id AND repair_invoices.business_id = repair_payments.business_id").
			Joins("JOIN repair_jobs ON repair_jobs.id = repair_invoices.repair_job_id AND repair_jobs.business_id = repair_invoices.business_id").
			Where("repair_payments.business_id = ? AND repair_jobs.unit_id = ? AND repair_payments.payment_date BETWEEN ? AND ?",
				businessId, workshop.ID, dayStart, dayEnd),
		"repair_payments.amount")
	if err != nil {
		return nil, err
	}

	materialsPaid, err := utils.SumColumn(
		db.WithContext(ctx).Model(&models.TransferSettlement{}).
			Joins("JOIN transfer_orders ON transfer_orders.id = transfer_settlements.transfer_order_id AND transfer_orders.business_id = transfer_settlements.business_id").
			Where("transfer_settlements.business_id = ? AND transfer_orders.to_unit_id = ? AND transfer_settlements.settlement_date BETWEEN ? AND ?",
				businessId, workshop.ID, dayStart, dayEnd),
		"transfer_settlements.amount")
	if err != nil {
		return nil, err
	}

	var openTransfers []*models.TransferOrder
	if err := db.WithContext(ctx).Model(&models.TransferOrder{}).
		Where("business_id = ? AND status NOT IN ?",
			businessId,
			[]models.TransferOrderStatus{models.TransferOrderStatusDraft, models.TransferOrderStatusClosed}).
		Find(&openTransfers).Error; err != nil {
		return nil, err
	}
	pendingAmount := decimal.Zero
	for _, t := range openTransfers {
		pendingAmount = pendingAmount.Add(t.Outstanding())
	}

	return &WorkshopDashboardResponse{
		DailySales:                 dailySales,
		RepairRevenueToday:         repairRevenue,
		WorkshopMaterialsPaidToday: materialsPaid,
		WorkshopIncomeToday:        repairRevenue.Sub(materialsPaid),
		LowStockCount:              lowStock,
		PendingRepairs:             pendingRepairs,
		CompletedRepairsToday:      completedToday,
		PendingTransfersCount:      int64(len(openTransfers)),
		PendingTransferAmount:      pendingAmount,
	}, nil
}
