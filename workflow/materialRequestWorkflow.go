package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

type MaterialRequestApproval struct {
	Message    string `json:"message"`
	TransferId int    `json:"transfer_id"`
}

// SubmitMaterialRequest moves a draft to submitted. Submission is refused
// with an itemized message while any line asks for more than the shop holds.
func SubmitMaterialRequest(ctx context.Context, id int) (*models.MaterialRequest, error) {

	ctx, span := startSpan(ctx, "workflow.SubmitMaterialRequest")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	request, err := models.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.MaterialRequestStatusDraft {
		return nil, fmt.Errorf("request is %s and cannot be submitted", request.Status)
	}
	return submitRequest(ctx, businessId, request)
}

// ResubmitMaterialRequest re-enters the review queue from draft or rejected
// and wipes the previous review.
func ResubmitMaterialRequest(ctx context.Context, id int) (*models.MaterialRequest, error) {

	ctx, span := startSpan(ctx, "workflow.ResubmitMaterialRequest")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	request, err := models.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.MaterialRequestStatusDraft && request.Status != models.MaterialRequestStatusRejected {
		return nil, fmt.Errorf("request is %s and cannot be resubmitted", request.Status)
	}
	return submitRequest(ctx, businessId, request)
}

func submitRequest(ctx context.Context, businessId string, request *models.MaterialRequest) (*models.MaterialRequest, error) {

	db := config.GetDB()
	tx := db.Begin()

	if err := models.ValidateStockForLines(tx, ctx, businessId, request.RequestedQuantities()); err != nil {
		tx.Rollback()
		return nil, err
	}

	err := tx.WithContext(ctx).Model(request).Updates(map[string]interface{}{
		"Status":          models.MaterialRequestStatusSubmitted,
		"ReviewedBy":      nil,
		"ReviewedAt":      nil,
		"RejectionReason": "",
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Material request %s submitted for approval", request.RequestNumber)
	if err := models.CreateTimelineEvent(tx.WithContext(ctx), request.UnitId, models.TimelineEventTypeRequestSubmitted, request.ID, "MaterialRequest", description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetMaterialRequest(ctx, request.ID)
}

// ApproveMaterialRequest turns a submitted request into a confirmed transfer
// order under the business posting lock: stock is re-validated, buying prices
// are snapshotted as transfer prices, and the shop stock moves out. The
// unique material_request_id key makes concurrent approval a no-op race.
func ApproveMaterialRequest(ctx context.Context, id int) (*MaterialRequestApproval, error) {

	ctx, span := startSpan(ctx, "workflow.ApproveMaterialRequest")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	request, err := models.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.MaterialRequestStatusSubmitted {
		return nil, fmt.Errorf("request is %s and cannot be approved", request.Status)
	}

	shop, err := models.GetUnitByCode(ctx, models.UnitCodeShop)
	if err != nil {
		return nil, err
	}

	// price the lines and take the sequence before the transaction opens
	var lines []models.TransferOrderLine
	total := decimal.Zero
	for _, requestLine := range request.Lines {
		product, err := models.GetProduct(ctx, requestLine.ProductId)
		if err != nil {
			return nil, err
		}
		amount := product.BuyingPrice.Mul(requestLine.QuantityRequested)
		total = total.Add(amount)
		lines = append(lines, models.TransferOrderLine{
			BusinessId:    businessId,
			ProductId:     requestLine.ProductId,
			Name:          requestLine.Name,
			Quantity:      requestLine.QuantityRequested,
			TransferPrice: product.BuyingPrice,
		})
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	now := time.Now().UTC()
	requestId := request.ID
	order := models.TransferOrder{
		BusinessId:        businessId,
		MaterialRequestId: &requestId,
		FromUnitId:        shop.ID,
		ToUnitId:          request.UnitId,
		Status:            models.TransferOrderStatusConfirmed,
		TransferDate:      now,
		TotalAmount:       total,
		ConfirmedBy:       &userId,
		ConfirmedAt:       &now,
		Lines:             lines,
	}

	seqNo, err := utils.GetSequence[models.TransferOrder](ctx, businessId)
	if err != nil {
		return nil, err
	}
	order.SequenceNo = decimal.NewFromInt(seqNo)
	order.TransferNumber = "TR-" + fmt.Sprint(seqNo)

	// best-effort cross-instance lock; the advisory lock below is authoritative
	release, err := utils.BusinessLock(ctx, businessId, "posting", "workflow", "ApproveMaterialRequest")
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	tx := db.Begin()

	if err := AcquireBusinessPostingLock(tx, businessId); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer ReleaseBusinessPostingLock(tx, businessId)

	if err := models.ValidateStockForLines(tx, ctx, businessId, request.RequestedQuantities()); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyErr(err) {
			return nil, errors.New("already approved")
		}
		return nil, err
	}

	for _, line := range order.Lines {
		entry := &models.StockEntry{
			BusinessId:    businessId,
			UnitId:        shop.ID,
			ProductId:     line.ProductId,
			EntryType:     models.StockEntryTypeTransferredOut,
			Quantity:      line.Quantity.Neg(),
			UnitCost:      line.TransferPrice,
			ReferenceType: "TransferOrder",
			ReferenceId:   order.ID,
			Notes:         "transfer to workshop " + order.TransferNumber,
		}
		if err := models.CreateStockEntry(tx.WithContext(ctx), entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	err = tx.WithContext(ctx).Model(request).Updates(map[string]interface{}{
		"Status":     models.MaterialRequestStatusApproved,
		"ReviewedBy": userId,
		"ReviewedAt": now,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Material request %s approved, transfer %s created for %s", request.RequestNumber, order.TransferNumber, total.String())
	if err := models.CreateTimelineEvent(tx.WithContext(ctx), request.UnitId, models.TimelineEventTypeRequestApproved, request.ID, "MaterialRequest", description); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &MaterialRequestApproval{
		Message:    "Material request approved.",
		TransferId: order.ID,
	}, nil
}

// RejectMaterialRequest records the review outcome. An empty reason is fine.
func RejectMaterialRequest(ctx context.Context, id int, reason string) (*models.MaterialRequest, error) {

	ctx, span := startSpan(ctx, "workflow.RejectMaterialRequest")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	request, err := models.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.MaterialRequestStatusSubmitted {
		return nil, fmt.Errorf("request is %s and cannot be rejected", request.Status)
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	now := time.Now().UTC()

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(request).Updates(map[string]interface{}{
		"Status":          models.MaterialRequestStatusRejected,
		"ReviewedBy":      userId,
		"ReviewedAt":      now,
		"RejectionReason": reason,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("Material request %s rejected", request.RequestNumber)
	if err := models.CreateTimelineEvent(tx.WithContext(ctx), request.UnitId, models.TimelineEventTypeRequestRejected, request.ID, "MaterialRequest", description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetMaterialRequest(ctx, id)
}

// UpdateApprovedMaterialRequest reconciles an approved request against its
// confirmed transfer order line by line. Stock moves by the deltas only,
// removed lines are restocked, and existing transfer prices stay frozen.
func UpdateApprovedMaterialRequest(ctx context.Context, id int, input *models.NewMaterialRequest) (*models.MaterialRequest, error) {

	ctx, span := startSpan(ctx, "workflow.UpdateApprovedMaterialRequest")
	defer span.End()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	request, err := models.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.MaterialRequestStatusApproved {
		return nil, fmt.Errorf("request is %s and has no transfer to reconcile", request.Status)
	}
	if len(input.Lines) == 0 {
		return nil, errors.New("at least one line is required")
	}

	order, err := models.GetTransferOrderByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	shop, err := models.GetUnitByCode(ctx, models.UnitCodeShop)
	if err != nil {
		return nil, err
	}

	newQuantities := map[int]decimal.Decimal{}
	for _, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, errors.New("line quantity must be positive")
		}
		newQuantities[line.ProductId] = newQuantities[line.ProductId].Add(line.Quantity)
	}

	oldLines := map[int]models.TransferOrderLine{}
	for _, line := range order.Lines {
		oldLines[line.ProductId] = line
	}

	// extra stock is only needed for the increases
	increases := map[int]decimal.Decimal{}
	for productId, newQty := range newQuantities {
		oldQty := oldLines[productId].Quantity
		if newQty.GreaterThan(oldQty) {
			increases[productId] = newQty.Sub(oldQty)
		}
	}

	// fetch the products before the transaction opens
	products := map[int]*models.Product{}
	for _, line := range input.Lines {
		product, err := models.GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		products[line.ProductId] = product
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := AcquireBusinessPostingLock(tx, businessId); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer ReleaseBusinessPostingLock(tx, businessId)

	if err := models.ValidateStockForLines(tx, ctx, businessId, increases); err != nil {
		tx.Rollback()
		return nil, err
	}

	newTotal := decimal.Zero
	var transferLines []models.TransferOrderLine
	var requestLines []models.MaterialRequestLine

	for _, line := range input.Lines {
		product := products[line.ProductId]

		transferPrice := product.BuyingPrice
		if oldLine, existed := oldLines[line.ProductId]; existed {
			transferPrice = oldLine.TransferPrice
		}
		newTotal = newTotal.Add(transferPrice.Mul(line.Quantity))

		transferLines = append(transferLines, models.TransferOrderLine{
			BusinessId:      businessId,
			TransferOrderId: order.ID,
			ProductId:       line.ProductId,
			Name:            product.Name,
			Quantity:        line.Quantity,
			TransferPrice:   transferPrice,
		})
		requestLines = append(requestLines, models.MaterialRequestLine{
			BusinessId:        businessId,
			MaterialRequestId: id,
			ProductId:         line.ProductId,
			Name:              product.Name,
			QuantityRequested: line.Quantity,
		})

		delta := line.Quantity.Sub(oldLines[line.ProductId].Quantity)
		if delta.IsZero() {
			continue
		}
		entryType := models.StockEntryTypeTransferredOut
		quantity := delta.Neg()
		if delta.IsNegative() {
			entryType = models.StockEntryTypeTransferredIn
		}
		entry := &models.StockEntry{
			BusinessId:    businessId,
			UnitId:        shop.ID,
			ProductId:     line.ProductId,
			EntryType:     entryType,
			Quantity:      quantity,
			UnitCost:      transferPrice,
			ReferenceType: "TransferOrder",
			ReferenceId:   order.ID,
			Notes:         "reconciled transfer " + order.TransferNumber,
		}
		if err := models.CreateStockEntry(tx.WithContext(ctx), entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// removed lines go back to the shop shelf
	for productId, oldLine := range oldLines {
		if _, kept := newQuantities[productId]; kept {
			continue
		}
		entry := &models.StockEntry{
			BusinessId:    businessId,
			UnitId:        shop.ID,
			ProductId:     productId,
			EntryType:     models.StockEntryTypeTransferredIn,
			Quantity:      oldLine.Quantity,
			UnitCost:      oldLine.TransferPrice,
			ReferenceType: "TransferOrder",
			ReferenceId:   order.ID,
			Notes:         "removed from transfer " + order.TransferNumber,
		}
		if err := models.CreateStockEntry(tx.WithContext(ctx), entry); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.WithContext(ctx).Where("transfer_order_id = ?", order.ID).Delete(&models.TransferOrderLine{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&transferLines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("material_request_id = ?", id).Delete(&models.MaterialRequestLine{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&requestLines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"TotalAmount": newTotal,
		"Status":      models.DeriveTransferStatus(order.SettledAmount, newTotal),
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	err = tx.WithContext(ctx).Model(request).Updates(map[string]interface{}{
		"RepairJobId": input.RepairJobId,
		"Notes":       input.Notes,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetMaterialRequest(ctx, id)
}
