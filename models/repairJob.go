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

type RepairJob struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id"`
	UnitId           int             `gorm:"index" json:"unit_id"`
	JobNumber        string          `gorm:"size:255;not null" json:"job_number"`
	SequenceNo       decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	CustomerId       int             `gorm:"index;not null" json:"customer_id"`
	JobTypeId        *int            `gorm:"index" json:"job_type_id"`
	ItemDescription  string          `gorm:"size:500;not null" json:"item_description"`
	IssueDescription string          `gorm:"type:text" json:"issue_description"`
	Status           RepairJobStatus `gorm:"size:20;not null;default:received" json:"status"`
	Priority         RepairPriority  `gorm:"size:10;not null;default:normal" json:"priority"`
	IntakeDate       time.Time       `gorm:"not null" json:"intake_date"`
	DueDate          *time.Time      `json:"due_date"`
	CompletedDate    *time.Time      `json:"completed_date"`
	CollectedDate    *time.Time      `json:"collected_date"`
	AssignedTo       *int            `gorm:"index" json:"assigned_to"`
	UserId           int             `gorm:"index" json:"user_id"`
	Notes            string          `gorm:"type:text" json:"notes"`
	LabourCharges    []LabourCharge  `gorm:"foreignKey:RepairJobId" json:"labour_charges"`
	Parts            []RepairJobPart `gorm:"foreignKey:RepairJobId" json:"parts"`
	Invoice          *RepairInvoice  `gorm:"foreignKey:RepairJobId" json:"invoice"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RepairJobPart records a material used on a job. Unit cost is the
// transfer price when the part came through a transfer, otherwise the
// product buying price.
type RepairJobPart struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	BusinessId          string          `gorm:"index;not null" json:"business_id"`
	RepairJobId         int             `gorm:"index;not null" json:"repair_job_id"`
	ProductId           int             `gorm:"index;not null" json:"product_id"`
	TransferOrderLineId *int            `gorm:"index" json:"transfer_order_line_id"`
	Name                string          `gorm:"size:255;not null" json:"name"`
	QuantityUsed        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_used"`
	UnitCost            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	UnitPriceToCustomer decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price_to_customer"`
}

type LabourCharge struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	RepairJobId int             `gorm:"index;not null" json:"repair_job_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	LabourType  string          `gorm:"size:50" json:"labour_type"`
}

type NewRepairJobPart struct {
	ProductId           int             `json:"product_id" binding:"required"`
	TransferOrderLineId *int            `json:"transfer_order_line_id"`
	QuantityUsed        decimal.Decimal `json:"quantity_used"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	UnitPriceToCustomer decimal.Decimal `json:"unit_price_to_customer"`
}

type NewLabourCharge struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	LabourType  string          `json:"labour_type"`
}

type NewRepairJob struct {
	CustomerId       int                 `json:"customer_id" binding:"required"`
	JobTypeId        *int                `json:"job_type_id"`
	ItemDescription  string              `json:"item_description" binding:"required"`
	IssueDescription string              `json:"issue_description"`
	Status           RepairJobStatus     `json:"status"`
	Priority         RepairPriority      `json:"priority"`
	DueDate          *MyDateString       `json:"due_date"`
	AssignedTo       *int                `json:"assigned_to"`
	Notes            string              `json:"notes"`
	LabourCharges    *[]NewLabourCharge  `json:"labour_charges"`
	Parts            *[]NewRepairJobPart `json:"parts"`
}

type RepairJobsEdge Edge[RepairJob]

type RepairJobsConnection struct {
	PageInfo *PageInfo         `json:"pageInfo"`
	Edges    []*RepairJobsEdge `json:"edges"`
}

func (obj RepairJob) GetId() int {
	return obj.ID
}

func (obj RepairJob) GetCursor() string {
	return obj.IntakeDate.String()
}

func (input *NewRepairJob) validate(ctx context.Context, businessId string) error {

	if err := utils.ValidateResourceId[Customer](ctx, businessId, input.CustomerId); err != nil {
		return errors.New("customer not found")
	}
	if input.JobTypeId != nil && *input.JobTypeId > 0 {
		if err := utils.ValidateResourceId[JobType](ctx, businessId, *input.JobTypeId); err != nil {
			return errors.New("job type not found")
		}
	}
	if input.Status != "" && !input.Status.Valid() {
		return errors.New("invalid status")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return errors.New("invalid priority")
	}
	if input.AssignedTo != nil && *input.AssignedTo > 0 {
		if err := utils.ValidateResourceId[User](ctx, businessId, *input.AssignedTo); err != nil {
			return errors.New("assigned user not found")
		}
	}
	if input.LabourCharges != nil {
		for _, charge := range *input.LabourCharges {
			if !charge.Amount.IsPositive() {
				return errors.New("labour amount must be positive")
			}
		}
	}
	if input.Parts != nil {
		for _, part := range *input.Parts {
			if part.QuantityUsed.IsNegative() || part.QuantityUsed.IsZero() {
				return errors.New("part quantity must be positive")
			}
			if err := utils.ValidateResourceId[Product](ctx, businessId, part.ProductId); err != nil {
				return errors.New("product not found")
			}
		}
	}
	return nil
}

func (input *NewRepairJob) buildParts(ctx context.Context, businessId string) ([]RepairJobPart, error) {

	if input.Parts == nil {
		return nil, nil
	}
	var parts []RepairJobPart
	for _, line := range *input.Parts {
		product, err := GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		unitCost := line.UnitCost
		if unitCost.IsZero() {
			unitCost = product.BuyingPrice
		}
		parts = append(parts, RepairJobPart{
			BusinessId:          businessId,
			ProductId:           line.ProductId,
			TransferOrderLineId: line.TransferOrderLineId,
			Name:                product.Name,
			QuantityUsed:        line.QuantityUsed,
			UnitCost:            unitCost,
			UnitPriceToCustomer: line.UnitPriceToCustomer,
		})
	}
	return parts, nil
}

func (input *NewRepairJob) buildCharges(businessId string) []LabourCharge {

	if input.LabourCharges == nil {
		return nil
	}
	var charges []LabourCharge
	for _, line := range *input.LabourCharges {
		charges = append(charges, LabourCharge{
			BusinessId:  businessId,
			Description: line.Description,
			Amount:      line.Amount,
			LabourType:  line.LabourType,
		})
	}
	return charges
}

// CreateRepairJob books an item in at the workshop and opens its invoice
// in the same transaction.
func CreateRepairJob(ctx context.Context, input *NewRepairJob) (*RepairJob, error) {

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

	parts, err := input.buildParts(ctx, businessId)
	if err != nil {
		return nil, err
	}
	charges := input.buildCharges(businessId)

	status := input.Status
	if status == "" {
		status = RepairJobStatusReceived
	}
	priority := input.Priority
	if priority == "" {
		priority = RepairPriorityNormal
	}
	var dueDate *time.Time
	if input.DueDate != nil {
		v := time.Time(*input.DueDate)
		dueDate = &v
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	job := RepairJob{
		BusinessId:       businessId,
		UnitId:           workshop.ID,
		CustomerId:       input.CustomerId,
		JobTypeId:        input.JobTypeId,
		ItemDescription:  input.ItemDescription,
		IssueDescription: input.IssueDescription,
		Status:           status,
		Priority:         priority,
		IntakeDate:       time.Now().UTC(),
		DueDate:          dueDate,
		AssignedTo:       input.AssignedTo,
		UserId:           userId,
		Notes:            input.Notes,
		LabourCharges:    charges,
		Parts:            parts,
	}

	seqNo, err := utils.GetSequence[RepairJob](ctx, businessId)
	if err != nil {
		return nil, err
	}
	job.SequenceNo = decimal.NewFromInt(seqNo)
	job.JobNumber = "JOB-" + fmt.Sprint(seqNo)

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&job).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	invoice := RepairInvoice{
		BusinessId:    businessId,
		RepairJobId:   job.ID,
		PaymentStatus: RepairInvoiceStatusUnpaid,
	}
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recalcRepairInvoice(tx, ctx, businessId, job.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetRepairJob(ctx, job.ID)
}

func UpdateRepairJob(ctx context.Context, id int, input *NewRepairJob) (*RepairJob, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	before, err := utils.FetchModel[RepairJob](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if before.Status == RepairJobStatusCollected {
		return nil, errors.New("collected job cannot be edited")
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	parts, err := input.buildParts(ctx, businessId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	updates := map[string]interface{}{
		"CustomerId":       input.CustomerId,
		"JobTypeId":        input.JobTypeId,
		"ItemDescription":  input.ItemDescription,
		"IssueDescription": input.IssueDescription,
		"AssignedTo":       input.AssignedTo,
		"Notes":            input.Notes,
	}
	if input.Status != "" {
		updates["Status"] = input.Status
	}
	if input.Priority != "" {
		updates["Priority"] = input.Priority
	}
	if input.DueDate != nil {
		updates["DueDate"] = time.Time(*input.DueDate)
	}
	update := RepairJob{ID: id, BusinessId: businessId}
	if err := tx.WithContext(ctx).Model(&update).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// nil slices keep the existing charges, empty slices clear them
	if input.LabourCharges != nil {
		if err := tx.WithContext(ctx).Where("repair_job_id = ?", id).Delete(&LabourCharge{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		charges := input.buildCharges(businessId)
		for i := range charges {
			charges[i].RepairJobId = id
		}
		if len(charges) > 0 {
			if err := tx.WithContext(ctx).Create(&charges).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}
	if input.Parts != nil {
		if err := tx.WithContext(ctx).Where("repair_job_id = ?", id).Delete(&RepairJobPart{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for i := range parts {
			parts[i].RepairJobId = id
		}
		if len(parts) > 0 {
			if err := tx.WithContext(ctx).Create(&parts).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := recalcRepairInvoice(tx, ctx, businessId, id); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetRepairJob(ctx, id)
}

// CompleteRepairJob marks open work as finished and stamps the date.
func CompleteRepairJob(ctx context.Context, id int) (*RepairJob, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	job, err := utils.FetchModel[RepairJob](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case RepairJobStatusReceived, RepairJobStatusInProgress, RepairJobStatusOnHold:
	default:
		return nil, errors.New("job cannot be completed in current status")
	}

	now := time.Now().UTC()
	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&job).Updates(map[string]interface{}{
		"Status":        RepairJobStatusCompleted,
		"CompletedDate": now,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	description := fmt.Sprintf("Repair job %s completed", job.JobNumber)
	if err := createTimelineEvent(tx.WithContext(ctx), job.UnitId, TimelineEventTypeJobStatusChange, job.ID, "RepairJob", description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetRepairJob(ctx, id)
}

// CollectRepairJob hands the item back to the customer.
func CollectRepairJob(ctx context.Context, id int) (*RepairJob, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	job, err := utils.FetchModel[RepairJob](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if job.Status != RepairJobStatusCompleted {
		return nil, errors.New("job must be completed before collection")
	}

	now := time.Now().UTC()
	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&job).Updates(map[string]interface{}{
		"Status":        RepairJobStatusCollected,
		"CollectedDate": now,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	description := fmt.Sprintf("Repair job %s collected by customer", job.JobNumber)
	if err := createTimelineEvent(tx.WithContext(ctx), job.UnitId, TimelineEventTypeJobStatusChange, job.ID, "RepairJob", description); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetRepairJob(ctx, id)
}

func DeleteRepairJob(ctx context.Context, id int) (*RepairJob, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := GetRepairJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.Invoice != nil && result.Invoice.PaidAmount.IsPositive() {
		return nil, errors.New("job with payments cannot be deleted")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("repair_job_id = ?", id).Delete(&LabourCharge{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("repair_job_id = ?", id).Delete(&RepairJobPart{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("repair_job_id = ?", id).Delete(&RepairInvoice{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&RepairJob{ID: id, BusinessId: businessId}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetRepairJob(ctx context.Context, id int) (*RepairJob, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[RepairJob](ctx, businessId, id, "LabourCharges", "Parts", "Invoice")
}

func PaginateRepairJob(ctx context.Context, limit *int, after *string, customerId *int, status *RepairJobStatus, priority *RepairPriority, assignedTo *int, fromDate *MyDateString, toDate *MyDateString) (*RepairJobsConnection, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)

	business, err := GetBusiness(ctx)
	if err != nil {
		return nil, errors.New("business id is required")
	}
	if err := fromDate.StartOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(business.Timezone); err != nil {
		return nil, err
	}

	if customerId != nil && *customerId > 0 {
		dbCtx.Where("customer_id = ?", *customerId)
	}
	if status != nil && *status != "" {
		dbCtx.Where("status = ?", *status)
	}
	if priority != nil && *priority != "" {
		dbCtx.Where("priority = ?", *priority)
	}
	if assignedTo != nil && *assignedTo > 0 {
		dbCtx.Where("assigned_to = ?", *assignedTo)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("intake_date BETWEEN ? AND ?", fromDate, toDate)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[RepairJob](dbCtx, *limit, after, "intake_date", "<")
	if err != nil {
		return nil, err
	}
	var repairJobsConnection RepairJobsConnection
	repairJobsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		repairJobsEdge := RepairJobsEdge(edge)
		repairJobsConnection.Edges = append(repairJobsConnection.Edges, &repairJobsEdge)
	}

	return &repairJobsConnection, err
}
