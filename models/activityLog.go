package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"gorm.io/gorm"
)

type ActivityLog struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index;not null" json:"business_id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type" binding:"required"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type ActivityLogsConnection struct {
	Edges    []*ActivityLogsEdge `json:"edges"`
	PageInfo *PageInfo           `json:"pageInfo"`
}

type ActivityLogsEdge Edge[ActivityLog]

func (obj ActivityLog) GetId() int {
	return obj.ID
}

func (obj ActivityLog) GetCursor() string {
	return obj.CreatedAt.String()
}

// write one audit row inside the caller's transaction.
// businessId, userId and userName come from the transaction's context
func createActivity(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var activity ActivityLog

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}

	activity.BusinessId = businessId
	activity.ActionType = actionType
	activity.Before = string(b)
	activity.After = string(a)
	activity.Description = description
	activity.ReferenceID = referenceId
	activity.ReferenceType = referenceType
	activity.UserId = userId
	activity.UserName = userName

	err = tx.Create(&activity).Error
	return err
}

func SaveActivityCreate(tx *gorm.DB, id int, obj interface{}, description string) error {
	return createActivity(tx, "CREATE", id, tx.Statement.Table, nil, obj, description)
}

func SaveActivityUpdate(tx *gorm.DB, id int, currentValue interface{}, description string) error {

	var newValue = tx.Statement.Dest

	return createActivity(tx, "UPDATE", id, tx.Statement.Table, currentValue, newValue, description)
}

func SaveActivityDelete(tx *gorm.DB, id int, obj interface{}, description string) error {
	return createActivity(tx, "DELETE", id, tx.Statement.Table, obj, nil, description)
}

func GetActivityLogs(ctx context.Context, referenceId *int, referenceType *string, userId *int) ([]*ActivityLog, error) {

	db := config.GetDB()
	var results []*ActivityLog

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", referenceId)
	}
	if referenceType != nil && len(*referenceType) > 0 {
		dbCtx = dbCtx.Where("reference_type = ?", referenceType)
	}
	if userId != nil && *userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", userId)
	}
	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func PaginateActivityLog(ctx context.Context,
	limit *int,
	after *string,
	referenceType *string,
	referenceID *int,
	userID *int,
	actionType *string,
) (*ActivityLogsConnection, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if referenceType != nil && *referenceType != "" {
		dbCtx.Where("reference_type = ?", *referenceType)
	}
	if referenceID != nil && *referenceID > 0 {
		dbCtx.Where("reference_id = ?", *referenceID)
	}
	if userID != nil && *userID > 0 {
		dbCtx.Where("user_id = ?", *userID)
	}
	if actionType != nil && *actionType != "" {
		dbCtx.Where("action_type = ?", *actionType)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[ActivityLog](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection ActivityLogsConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		activityLogsEdge := ActivityLogsEdge(edge)
		connection.Edges = append(connection.Edges, &activityLogsEdge)
	}

	return &connection, err
}
