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

type StatementItemRow struct {
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

type StatementPaymentRow struct {
	Id          int             `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaymentDate time.Time       `json:"payment_date"`
	Cashier     *string         `json:"cashier"`
}

type StatementSaleRow struct {
	Id            int                    `json:"id"`
	SaleNumber    string                 `json:"sale_number"`
	SaleDate      time.Time              `json:"sale_date"`
	Status        models.SaleStatus      `json:"status"`
	PaymentStatus models.PaymentStatus   `json:"payment_status"`
	IsLoan        bool                   `json:"is_loan"`
	FinalAmount   decimal.Decimal        `json:"final_amount"`
	PaidAmount    decimal.Decimal        `json:"paid_amount"`
	Outstanding   decimal.Decimal        `json:"outstanding"`
	SoldBy        *string                `json:"sold_by"`
	Items         []*StatementItemRow    `json:"items"`
	Payments      []*StatementPaymentRow `json:"payments"`
}

type StatementSummary struct {
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	SalesCount       int             `json:"sales_count"`
}

type CustomerStatementResponse struct {
	Customer *models.Customer    `json:"customer"`
	Summary  StatementSummary    `json:"summary"`
	Sales    []*StatementSaleRow `json:"sales"`
}

// GetCustomerStatement lists a customer's shop sales with their payment
// history and running outstanding totals.
func GetCustomerStatement(ctx context.Context, customerId int, fromDate *models.MyDateString, toDate *models.MyDateString) (*CustomerStatementResponse, error) {

	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	businessId := business.ID.String()

	customer, err := models.GetCustomer(ctx, customerId)
	if err != nil {
		return nil, errors.New("customer not found")
	}

	if err := fromDate.StartOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}

	db := config.GetDB()

	salesQuery := db.WithContext(ctx).Model(&models.Sale{}).
		Where("business_id = ? AND customer_id = ? AND status <> ?",
			businessId, customerId, models.SaleStatusRefunded)
	if fromDate != nil {
		salesQuery = salesQuery.Where("sale_date >= ?", fromDate)
	}
	if toDate != nil {
		salesQuery = salesQuery.Where("sale_date <= ?", toDate)
	}

	var sales []*models.Sale
	if err := salesQuery.Preload("Items").
		Order("sale_date, id").
		Find(&sales).Error; err != nil {
		return nil, err
	}

	saleIds := make([]int, 0, len(sales))
	for _, s := range sales {
		saleIds = append(saleIds, s.ID)
	}

	paymentsBySale := map[int][]*StatementPaymentRow{}
	if len(saleIds) > 0 {
		paymentsSql := `
SELECT
    p.id,
    p.sale_id,
    p.amount,
    p.method,
    p.payment_date,
    u.name AS cashier
FROM
    payments AS p
        LEFT JOIN
    users AS u ON u.id = p.user_id
WHERE
    p.business_id = @businessId
        AND p.sale_id IN @saleIds
ORDER BY p.payment_date;
`
		var rows []*struct {
			Id          int
			SaleId      int
			Amount      decimal.Decimal
			Method      string
			PaymentDate time.Time
			Cashier     *string
		}
		if err := db.WithContext(ctx).Raw(paymentsSql, map[string]interface{}{
			"businessId": businessId,
			"saleIds":    saleIds,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			paymentsBySale[r.SaleId] = append(paymentsBySale[r.SaleId], &StatementPaymentRow{
				Id:          r.Id,
				Amount:      r.Amount,
				Method:      r.Method,
				PaymentDate: r.PaymentDate,
				Cashier:     r.Cashier,
			})
		}
	}

	userNames, err := userNamesById(ctx, businessId, sales)
	if err != nil {
		return nil, err
	}

	response := &CustomerStatementResponse{
		Customer: customer,
		Summary: StatementSummary{
			TotalInvoiced:    decimal.Zero,
			TotalPaid:        decimal.Zero,
			TotalOutstanding: decimal.Zero,
			SalesCount:       len(sales),
		},
	}

	for _, sale := range sales {
		items := make([]*StatementItemRow, 0, len(sale.Items))
		for _, item := range sale.Items {
			items = append(items, &StatementItemRow{
				Product:   item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Amount:    item.Amount,
			})
		}

		var soldBy *string
		if name, ok := userNames[sale.UserId]; ok {
			soldBy = &name
		}

		outstanding := sale.FinalAmount.Sub(sale.PaidAmount)
		response.Summary.TotalInvoiced = response.Summary.TotalInvoiced.Add(sale.FinalAmount)
		response.Summary.TotalPaid = response.Summary.TotalPaid.Add(sale.PaidAmount)
		response.Summary.TotalOutstanding = response.Summary.TotalOutstanding.Add(sale.Outstanding())

		response.Sales = append(response.Sales, &StatementSaleRow{
			Id:            sale.ID,
			SaleNumber:    sale.SaleNumber,
			SaleDate:      sale.SaleDate,
			Status:        sale.Status,
			PaymentStatus: sale.PaymentStatus,
			IsLoan:        utils.DereferencePtr(sale.IsLoan),
			FinalAmount:   sale.FinalAmount,
			PaidAmount:    sale.PaidAmount,
			Outstanding:   outstanding,
			SoldBy:        soldBy,
			Items:         items,
			Payments:      paymentsBySale[sale.ID],
		})
	}

	return response, nil
}

func userNamesById(ctx context.Context, businessId string, sales []*models.Sale) (map[int]string, error) {
	userIds := make([]int, 0, len(sales))
	for _, s := range sales {
		userIds = append(userIds, s.UserId)
	}
	userIds = utils.UniqueSlice(userIds)

	names := map[int]string{}
	if len(userIds) == 0 {
		return names, nil
	}

	db := config.GetDB()
	var users []*models.User
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("business_id = ? AND id IN ?", businessId, userIds).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
