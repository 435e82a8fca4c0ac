package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RepairInvoice is the single bill for a repair job. With a fixed-price
// job type the customer pays one amount covering labour and materials;
// total_parts only exists to split that amount between the units.
type RepairInvoice struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	BusinessId    string              `gorm:"index;not null" json:"business_id"`
	RepairJobId   int                 `gorm:"uniqueIndex;not null" json:"repair_job_id"`
	TotalParts    decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_parts"`
	TotalLabour   decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_labour"`
	TaxAmount     decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	PaymentStatus RepairInvoiceStatus `gorm:"size:20;not null;default:unpaid" json:"payment_status"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj RepairInvoice) GetId() int {
	return obj.ID
}

func (obj RepairInvoice) GetCursor() string {
	return obj.CreatedAt.String()
}

func (obj RepairInvoice) Outstanding() decimal.Decimal {
	outstanding := obj.TotalAmount.Sub(obj.PaidAmount)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// CalcRepairInvoiceTotals computes the labour and total amounts. A fixed
// price covers labour plus materials, so labour is whatever remains after
// parts and tax. Without one, the total is the sum of its pieces.
func CalcRepairInvoiceTotals(fixedPrice *decimal.Decimal, labourSum decimal.Decimal, partsSum decimal.Decimal, taxAmount decimal.Decimal) (totalLabour decimal.Decimal, totalAmount decimal.Decimal) {
	if fixedPrice != nil {
		totalAmount = fixedPrice.Add(taxAmount)
		totalLabour = totalAmount.Sub(partsSum).Sub(taxAmount)
		if totalLabour.IsNegative() {
			totalLabour = decimal.Zero
		}
		return totalLabour, totalAmount
	}
	return labourSum, labourSum.Add(partsSum).Add(taxAmount)
}

func DeriveRepairInvoiceStatus(paid decimal.Decimal, total decimal.Decimal) RepairInvoiceStatus {
	if paid.GreaterThanOrEqual(total) && total.IsPositive() {
		return RepairInvoiceStatusPaid
	}
	if paid.IsPositive() {
		return RepairInvoiceStatusPartial
	}
	return RepairInvoiceStatusUnpaid
}

// recalcRepairInvoice refreshes the parts, labour and total columns of a
// job's invoice from its current charges. Paid amount and status are left
// to the payment path.
func recalcRepairInvoice(tx *gorm.DB, ctx context.Context, businessId string, jobId int) error {

	var invoice RepairInvoice
	err := tx.WithContext(ctx).
		Where("business_id = ? AND repair_job_id = ?", businessId, jobId).
		Take(&invoice).Error
	if err != nil {
		return err
	}

	var parts []RepairJobPart
	err = tx.WithContext(ctx).
		Where("business_id = ? AND repair_job_id = ?", businessId, jobId).
		Find(&parts).Error
	if err != nil {
		return err
	}
	partsSum := decimal.Zero
	for _, part := range parts {
		partsSum = partsSum.Add(part.UnitCost.Mul(part.QuantityUsed))
	}

	labourSum, err := utils.SumColumn(tx.WithContext(ctx).Model(&LabourCharge{}).
		Where("business_id = ? AND repair_job_id = ?", businessId, jobId), "amount")
	if err != nil {
		return err
	}

	var job RepairJob
	err = tx.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessId, jobId).
		Take(&job).Error
	if err != nil {
		return err
	}
	var fixedPrice *decimal.Decimal
	if job.JobTypeId != nil && *job.JobTypeId > 0 {
		var jobType JobType
		err = tx.WithContext(ctx).
			Where("business_id = ? AND id = ?", businessId, *job.JobTypeId).
			Take(&jobType).Error
		if err != nil {
			return err
		}
		fixedPrice = &jobType.FixedPrice
	}

	totalLabour, totalAmount := CalcRepairInvoiceTotals(fixedPrice, labourSum, partsSum, invoice.TaxAmount)

	return tx.WithContext(ctx).Model(&invoice).Updates(map[string]interface{}{
		"TotalParts":    partsSum,
		"TotalLabour":   totalLabour,
		"TotalAmount":   totalAmount,
		"PaymentStatus": DeriveRepairInvoiceStatus(invoice.PaidAmount, totalAmount),
	}).Error
}

func GetRepairInvoice(ctx context.Context, id int) (*RepairInvoice, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[RepairInvoice](ctx, businessId, id)
}

// GetRepairInvoiceByJob looks the invoice up through its one-to-one job link.
func GetRepairInvoiceByJob(ctx context.Context, jobId int) (*RepairInvoice, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var invoice RepairInvoice
	err := db.WithContext(ctx).
		Where("business_id = ? AND repair_job_id = ?", businessId, jobId).
		Take(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
