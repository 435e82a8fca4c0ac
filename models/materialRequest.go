package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"github.com/shopspring/decimal"
)

var ErrMaterialRequestApproved = errors.New("approved request must be reconciled against its transfer order")

// MaterialRequest is the workshop's ask for stock from the shop. It moves
// draft -> submitted -> approved|rejected; approval spawns the transfer
// order that carries the money side.
type MaterialRequest struct {
	ID              int                   `gorm:"primary_key" json:"id"`
	BusinessId      string                `gorm:"index;not null" json:"business_id"`
	UnitId          int                   `gorm:"index" json:"unit_id"`
	RequestNumber   string                `gorm:"size:255;not null" json:"request_number"`
	SequenceNo      decimal.Decimal       `gorm:"type:decimal(15);not null" json:"sequence_no"`
	RepairJobId     *int                  `gorm:"index" json:"repair_job_id"`
	Status          MaterialRequestStatus `gorm:"size:20;not null;default:draft" json:"status"`
	RequestedBy     int                   `gorm:"index" json:"requested_by"`
	ReviewedBy      *int                  `gorm:"index" json:"reviewed_by"`
	ReviewedAt      *time.Time            `json:"reviewed_at"`
	RejectionReason string                `gorm:"type:text" json:"rejection_reason"`
	Notes           string                `gorm:"type:text" json:"notes"`
	Lines           []MaterialRequestLine `gorm:"foreignKey:MaterialRequestId" json:"lines"`
	CreatedAt       time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type MaterialRequestLine struct {
	ID                int             `gorm:"primary_key" json:"id"`
	BusinessId        string          `gorm:"index;not null" json:"business_id"`
	MaterialRequestId int             `gorm:"index;not null" json:"material_request_id"`
	ProductId         int             `gorm:"index;not null" json:"product_id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	QuantityRequested decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_requested"`
}

type NewMaterialRequestLine struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

type NewMaterialRequest struct {
	RepairJobId *int                     `json:"repair_job_id"`
	Notes       string                   `json:"notes"`
	Lines       []NewMaterialRequestLine `json:"lines" binding:"required"`
}

type MaterialRequestsEdge Edge[MaterialRequest]

type MaterialRequestsConnection struct {
	PageInfo *PageInfo               `json:"pageInfo"`
	Edges    []*MaterialRequestsEdge `json:"edges"`
}

func (obj MaterialRequest) GetId() int {
	return obj.ID
}

func (obj MaterialRequest) GetCursor() string {
	return obj.CreatedAt.String()
}

func (input *NewMaterialRequest) validate(ctx context.Context, businessId string) error {

	if len(input.Lines) == 0 {
		return errors.New("at least one line is required")
	}
	seen := map[int]bool{}
	for _, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return errors.New("line quantity must be positive")
		}
		if seen[line.ProductId] {
			return errors.New("duplicate product in request lines")
		}
		seen[line.ProductId] = true
		if err := utils.ValidateResourceId[Product](ctx, businessId, line.ProductId); err != nil {
			return errors.New("product not found")
		}
	}
	if input.RepairJobId != nil && *input.RepairJobId > 0 {
		if err := utils.ValidateResourceId[RepairJob](ctx, businessId, *input.RepairJobId); err != nil {
			return errors.New("repair job not found")
		}
	}
	return nil
}

func (input *NewMaterialRequest) buildLines(ctx context.Context, businessId string) ([]MaterialRequestLine, error) {

	var lines []MaterialRequestLine
	for _, line := range input.Lines {
		product, err := GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		lines = append(lines, MaterialRequestLine{
			BusinessId:        businessId,
			ProductId:         line.ProductId,
			Name:              product.Name,
			QuantityRequested: line.Quantity,
		})
	}
	return lines, nil
}

// RequestedQuantities aggregates the lines into product -> quantity.
func (obj *MaterialRequest) RequestedQuantities() map[int]decimal.Decimal {
	requested := map[int]decimal.Decimal{}
	for _, line := range obj.Lines {
		requested[line.ProductId] = requested[line.ProductId].Add(line.QuantityRequested)
	}
	return requested
}

func CreateMaterialRequest(ctx context.Context, input *NewMaterialRequest) (*MaterialRequest, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	workshop, err := GetUnitByCode(ctx, UnitCodeWorkshop)
	if err != nil {
		return nil, err
	}
	lines, err := input.buildLines(ctx, businessId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	request := MaterialRequest{
		BusinessId:  businessId,
		UnitId:      workshop.ID,
		RepairJobId: input.RepairJobId,
		Status:      MaterialRequestStatusDraft,
		RequestedBy: userId,
		Notes:       input.Notes,
		Lines:       lines,
	}

	seqNo, err := utils.GetSequence[MaterialRequest](ctx, businessId)
	if err != nil {
		return nil, err
	}
	request.SequenceNo = decimal.NewFromInt(seqNo)
	request.RequestNumber = "MR-" + fmt.Sprint(seqNo)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&request).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateMaterialRequest edits the draft, submitted or rejected request.
// A rejected request drops back to draft with the review cleared. An
// approved request is flowed through the transfer reconciliation instead.
func UpdateMaterialRequest(ctx context.Context, id int, input *NewMaterialRequest) (*MaterialRequest, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	before, err := utils.FetchModel[MaterialRequest](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if before.Status == MaterialRequestStatusApproved {
		return nil, ErrMaterialRequestApproved
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	lines, err := input.buildLines(ctx, businessId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Where("material_request_id = ?", id).Delete(&MaterialRequestLine{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range lines {
		lines[i].MaterialRequestId = id
	}
	if err := tx.WithContext(ctx).Create(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{
		"RepairJobId": input.RepairJobId,
		"Notes":       input.Notes,
	}
	if before.Status == MaterialRequestStatusRejected {
		updates["Status"] = MaterialRequestStatusDraft
		updates["ReviewedBy"] = nil
		updates["ReviewedAt"] = nil
		updates["RejectionReason"] = ""
	}
	update := MaterialRequest{ID: id, BusinessId: businessId}
	if err := tx.WithContext(ctx).Model(&update).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[MaterialRequest](ctx, businessId, id, "Lines")
}

func DeleteMaterialRequest(ctx context.Context, id int) (*MaterialRequest, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[MaterialRequest](ctx, businessId, id, "Lines")
	if err != nil {
		return nil, err
	}
	if result.Status != MaterialRequestStatusDraft && result.Status != MaterialRequestStatusRejected {
		return nil, fmt.Errorf("request is %s and cannot be deleted", result.Status)
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("material_request_id = ?", id).Delete(&MaterialRequestLine{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&MaterialRequest{ID: id, BusinessId: businessId}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetMaterialRequest(ctx context.Context, id int) (*MaterialRequest, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[MaterialRequest](ctx, businessId, id, "Lines")
}

func PaginateMaterialRequest(ctx context.Context, limit *int, after *string, status *MaterialRequestStatus, repairJobId *int, requestedBy *int) (*MaterialRequestsConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)

	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if repairJobId != nil && *repairJobId > 0 {
		dbCtx.Where("repair_job_id = ?", *repairJobId)
	}
	if requestedBy != nil && *requestedBy > 0 {
		dbCtx.Where("requested_by = ?", *requestedBy)
	}
	dbCtx = dbCtx.Preload("Lines")

	edges, pageInfo, err := FetchPageCompositeCursor[MaterialRequest](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var materialRequestsConnection MaterialRequestsConnection
	materialRequestsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		materialRequestsEdge := MaterialRequestsEdge(edge)
		materialRequestsConnection.Edges = append(materialRequestsConnection.Edges, &materialRequestsEdge)
	}

	return &materialRequestsConnection, err
}
