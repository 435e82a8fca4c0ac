package reports

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type CashbookUnit struct {
	Id   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type CashbookPaymentRow struct {
	Id          int             `json:"id"`
	SaleId      *int            `json:"sale_id,omitempty"`
	TransferId  *int            `json:"transfer_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Cashier     *string         `json:"cashier"`
	PaymentDate time.Time       `json:"payment_date"`
	RowType     string          `json:"type"`
	Cleared     *bool           `json:"cleared,omitempty"`
}

type CashbookExpenseRow struct {
	Id          int             `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	RecordedBy  *string         `json:"recorded_by"`
}

type ShopCashbookResponse struct {
	Unit          CashbookUnit            `json:"unit"`
	Date          string                  `json:"date"`
	PaymentsTotal decimal.Decimal         `json:"payments_total"`
	ExpensesTotal decimal.Decimal         `json:"expenses_total"`
	NetCash       decimal.Decimal         `json:"net_cash"`
	Payments      []*CashbookPaymentRow   `json:"payments"`
	Expenses      []*CashbookExpenseRow   `json:"expenses"`
	Close         *models.DailyCashClose  `json:"close"`
}

type WorkshopCashbookResponse struct {
	Unit                      CashbookUnit           `json:"unit"`
	Date                      string                 `json:"date"`
	PaymentsInTotal           decimal.Decimal        `json:"payments_in_total"`
	PaymentsOutMaterialsTotal decimal.Decimal        `json:"payments_out_materials_total"`
	ExpensesTotal             decimal.Decimal        `json:"expenses_total"`
	NetCash                   decimal.Decimal        `json:"net_cash"`
	PaymentsIn                []*CashbookPaymentRow  `json:"payments_in"`
	PaymentsOutMaterials      []*CashbookPaymentRow  `json:"payments_out_materials"`
	Expenses                  []*CashbookExpenseRow  `json:"expenses"`
	Close                     *models.DailyCashClose `json:"close"`
}

func cashbookDay(business *models.Business, date *models.MyDateString) (time.Time, time.Time, time.Time, error) {
	target := time.Now()
	if date != nil {
		target = time.Time(*date)
	}
	day, err := utils.ConvertToDate(target, business.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	dayStart, dayEnd := utils.GetDayRange(day)
	return day, dayStart, dayEnd, nil
}

func cashbookClose(ctx context.Context, businessId string, unitId int, day time.Time) (*models.DailyCashClose, error) {
	db := config.GetDB()
	var closes []*models.DailyCashClose
	if err := db.WithContext(ctx).Model(&models.DailyCashClose{}).
		Where("business_id = ? AND unit_id = ? AND close_date = ?", businessId, unitId, day).
		Limit(1).Find(&closes).Error; err != nil {
		return nil, err
	}
	if len(closes) == 0 {
		return nil, nil
	}
	return closes[0], nil
}

func cashbookExpenses(ctx context.Context, businessId string, unitId int, dayStart time.Time, dayEnd time.Time) ([]*CashbookExpenseRow, decimal.Decimal, error) {
	sql := `
SELECT
    e.id,
    e.description,
    e.amount,
    e.category,
    u.name AS recorded_by
FROM
    expenses AS e
        LEFT JOIN
    users AS u ON u.id = e.user_id
WHERE
    e.business_id = @businessId
        AND e.unit_id = @unitId
        AND e.expense_date BETWEEN @dayStart AND @dayEnd
ORDER BY e.id DESC;
`
	db := config.GetDB()
	var rows []*CashbookExpenseRow
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"businessId": businessId,
		"unitId":     unitId,
		"dayStart":   dayStart,
		"dayEnd":     dayEnd,
	}).Scan(&rows).Error; err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return rows, total, nil
}

// GetShopCashbook lists the shop's cash movement for one day: payments on
// confirmed shop sales plus material settlements paid in by the workshop,
// against the shop's expenses. Only cleared settlements count towards the
// expected cash in the till; uncleared ones are listed but excluded.
func GetShopCashbook(ctx context.Context, date *models.MyDateString) (*ShopCashbookResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	shop, err := models.GetUnitByCode(ctx, models.UnitCodeShop)
	if err != nil {
		return nil, errors.New("shop unit is not configured")
	}

	day, dayStart, dayEnd, err := cashbookDay(business, date)
	if err != nil {
		return nil, err
	}

	salePaymentsSql := `
SELECT
    p.id,
    p.sale_id,
    p.amount,
    p.method,
    u.name AS cashier,
    p.payment_date,
    'sale_payment' AS row_type
FROM
    payments AS p
        JOIN
    sales AS s ON s.id = p.sale_id AND s.business_id = p.business_id
        LEFT JOIN
    users AS u ON u.id = p.user_id
WHERE
    p.business_id = @businessId
        AND s.status = 'confirmed'
        AND s.unit_id = @unitId
        AND p.payment_date BETWEEN @dayStart AND @dayEnd
ORDER BY p.payment_date;
`
	materialPaymentsSql := `
SELECT
    ts.id,
    ts.transfer_order_id AS transfer_id,
    ts.amount,
    'workshop_materials' AS method,
    u.name AS cashier,
    ts.settlement_date AS payment_date,
    'material_payment' AS row_type,
    ts.cleared
FROM
    transfer_settlements AS ts
        JOIN
    transfer_orders AS t ON t.id = ts.transfer_order_id AND t.business_id = ts.business_id
        LEFT JOIN
    users AS u ON u.id = ts.settled_by
WHERE
    ts.business_id = @businessId
        AND t.from_unit_id = @unitId
        AND ts.settlement_date BETWEEN @dayStart AND @dayEnd
ORDER BY ts.settlement_date;
`
	db := config.GetDB()
	params := map[string]interface{}{
		"businessId": businessId,
		"unitId":     shop.ID,
		"dayStart":   dayStart,
		"dayEnd":     dayEnd,
	}

	var salePayments []*CashbookPaymentRow
	if err := db.WithContext(ctx).Raw(salePaymentsSql, params).Scan(&salePayments).Error; err != nil {
		return nil, err
	}
	var materialPayments []*CashbookPaymentRow
	if err := db.WithContext(ctx).Raw(materialPaymentsSql, params).Scan(&materialPayments).Error; err != nil {
		return nil, err
	}

	paymentsTotal := decimal.Zero
	for _, p := range salePayments {
		paymentsTotal = paymentsTotal.Add(p.Amount)
	}
	for _, m := range materialPayments {
		if m.Cleared != nil && *m.Cleared {
			paymentsTotal = paymentsTotal.Add(m.Amount)
		}
	}

	expenses, expensesTotal, err := cashbookExpenses(ctx, businessId, shop.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	close, err := cashbookClose(ctx, businessId, shop.ID, day)
	if err != nil {
		return nil, err
	}

	payments := append(salePayments, materialPayments...)

	return &ShopCashbookResponse{
		Unit:          CashbookUnit{Id: shop.ID, Code: string(shop.Code), Name: shop.Name},
		Date:          day.Format("2006-01-02"),
		PaymentsTotal: paymentsTotal,
		ExpensesTotal: expensesTotal,
		NetCash:       paymentsTotal.Sub(expensesTotal),
		Payments:      payments,
		Expenses:      expenses,
		Close:         close,
	}, nil
}

// GetWorkshopCashbook lists the workshop's day: repair payments in, material
// settlements paid out to the shop, and workshop expenses.
func GetWorkshopCashbook(ctx context.Context, date *models.MyDateString) (*WorkshopCashbookResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	workshop, err := models.GetUnitByCode(ctx, models.UnitCodeWorkshop)
	if err != nil {
		return nil, errors.New("workshop unit is not configured")
	}

	day, dayStart, dayEnd, err := cashbookDay(business, date)
	if err != nil {
		return nil, err
	}

	repairPaymentsSql := `
SELECT
    rp.id,
    ri.repair_job_id AS sale_id,
    rp.amount,
    rp.method,
    u.name AS cashier,
    rp.payment_date,
    'repair_payment' AS row_type
FROM
    repair_payments AS rp
        JOIN
    repair_invoices AS ri ON ri.id = rp.invoice_id AND ri.business_id = rp.business_id
        JOIN
    repair_jobs AS rj ON rj.id = ri.repair_job_id AND rj.business_id = ri.business_id
        LEFT JOIN
    users AS u ON u.id = rp.received_by
WHERE
    rp.business_id = @businessId
        AND rj.unit_id = @unitId
        AND rp.payment_date BETWEEN @dayStart AND @dayEnd
ORDER BY rp.payment_date;
`
	materialsOutSql := `
SELECT
    ts.id,
    ts.transfer_order_id AS transfer_id,
    ts.amount,
    ts.method,
    u.name AS cashier,
    ts.settlement_date AS payment_date,
    'material_payment' AS row_type,
    ts.cleared
FROM
    transfer_settlements AS ts
        JOIN
    transfer_orders AS t ON t.id = ts.transfer_order_id AND t.business_id = ts.business_id
        LEFT JOIN
    users AS u ON u.id = ts.settled_by
WHERE
    ts.business_id = @businessId
        AND t.to_unit_id = @unitId
        AND ts.settlement_date BETWEEN @dayStart AND @dayEnd
ORDER BY ts.settlement_date;
`
	db := config.GetDB()
	params := map[string]interface{}{
		"businessId": businessId,
		"unitId":     workshop.ID,
		"dayStart":   dayStart,
		"dayEnd":     dayEnd,
	}

	var paymentsIn []*CashbookPaymentRow
	if err := db.WithContext(ctx).Raw(repairPaymentsSql, params).Scan(&paymentsIn).Error; err != nil {
		return nil, err
	}
	var materialsOut []*CashbookPaymentRow
	if err := db.WithContext(ctx).Raw(materialsOutSql, params).Scan(&materialsOut).Error; err != nil {
		return nil, err
	}

	paymentsInTotal := decimal.Zero
	for _, p := range paymentsIn {
		paymentsInTotal = paymentsInTotal.Add(p.Amount)
	}
	materialsTotal := decimal.Zero
	for _, m := range materialsOut {
		materialsTotal = materialsTotal.Add(m.Amount)
	}

	expenses, expensesTotal, err := cashbookExpenses(ctx, businessId, workshop.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	close, err := cashbookClose(ctx, businessId, workshop.ID, day)
	if err != nil {
		return nil, err
	}

	return &WorkshopCashbookResponse{
		Unit:                      CashbookUnit{Id: workshop.ID, Code: string(workshop.Code), Name: workshop.Name},
		Date:                      day.Format("2006-01-02"),
		PaymentsInTotal:           paymentsInTotal,
		PaymentsOutMaterialsTotal: materialsTotal,
		ExpensesTotal:             expensesTotal,
		NetCash:                   paymentsInTotal.Sub(materialsTotal).Sub(expensesTotal),
		PaymentsIn:                paymentsIn,
		PaymentsOutMaterials:      materialsOut,
		Expenses:                  expenses,
		Close:                     close,
	}, nil
}

type CashCloseRow struct {
	Id            int             `json:"id"`
	CloseDate     time.Time       `json:"close_date"`
	UnitId        int             `json:"unit_id"`
	UnitCode      string          `json:"unit_code"`
	UnitName      string          `json:"unit_name"`
	CashIn        decimal.Decimal `json:"cash_in"`
	CashOut       decimal.Decimal `json:"cash_out"`
	ExpectedFloat decimal.Decimal `json:"expected_float"`
	CountedFloat  decimal.Decimal `json:"counted_float"`
	Variance      decimal.Decimal `json:"variance"`
	ClosedBy      *string         `json:"closed_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// GetCashbookReport lists daily cash closes across units for the admin view.
func GetCashbookReport(ctx context.Context, fromDate *models.MyDateString, toDate *models.MyDateString, unitCode *models.UnitCode) ([]*CashCloseRow, error) {
	sqlT := `
SELECT
    c.id,
    c.close_date,
    c.unit_id,
    un.code AS unit_code,
    un.name AS unit_name,
    c.cash_in,
    c.cash_out,
    c.expected_float,
    c.counted_float,
    c.variance,
    u.name AS closed_by,
    c.created_at
FROM
    daily_cash_closes AS c
        JOIN
    units AS un ON un.id = c.unit_id AND un.business_id = c.business_id
        LEFT JOIN
    users AS u ON u.id = c.closed_by
WHERE
    c.business_id = @businessId
    {{- if .fromDate }} AND c.close_date >= @fromDate {{- end }}
    {{- if .toDate }} AND c.close_date <= @toDate {{- end }}
    {{- if .unitCode }} AND un.code = @unitCode {{- end }}
ORDER BY c.close_date DESC , c.created_at DESC;
`
	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	if err := fromDate.StartOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}
	if unitCode != nil && !unitCode.Valid() {
		return nil, errors.New("unit must be shop or workshop")
	}

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"fromDate": fromDate,
		"toDate":   toDate,
		"unitCode": unitCode,
	})
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*CashCloseRow
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"businessId": businessId,
		"fromDate":   fromDate,
		"toDate":     toDate,
		"unitCode":   unitCode,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
