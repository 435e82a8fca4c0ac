package models

import (
	"context"
	"errors"
	"time"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/utils"
	"gorm.io/gorm"
)

// TimelineEvent is the user-facing activity feed, one row per business event.
// Unlike ActivityLog it carries no before/after payloads.
type TimelineEvent struct {
	ID            int               `gorm:"primary_key" json:"id"`
	BusinessId    string            `gorm:"index;not null" json:"business_id"`
	UnitId        int               `gorm:"index" json:"unit_id"`
	EventType     TimelineEventType `gorm:"size:50;not null" json:"event_type"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	ReferenceID   int               `gorm:"index" json:"reference_id"`
	ReferenceType string            `gorm:"size:255" json:"reference_type"`
	UserId        int               `gorm:"index" json:"user_id"`
	UserName      string            `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

type TimelineEventsConnection struct {
	Edges    []*TimelineEventsEdge `json:"edges"`
	PageInfo *PageInfo             `json:"pageInfo"`
}

type TimelineEventsEdge Edge[TimelineEvent]

func (obj TimelineEvent) GetId() int {
	return obj.ID
}

func (obj TimelineEvent) GetCursor() string {
	return obj.CreatedAt.String()
}

// CreateTimelineEvent writes a feed row inside the caller's transaction.
func CreateTimelineEvent(tx *gorm.DB, unitId int, eventType TimelineEventType, referenceId int, referenceType string, description string) error {
	return createTimelineEvent(tx, unitId, eventType, referenceId, referenceType, description)
}

// write one feed row inside the caller's transaction
func createTimelineEvent(tx *gorm.DB, unitId int, eventType TimelineEventType, referenceId int, referenceType string, description string) error {

	ctx := tx.Statement.Context
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)

	event := TimelineEvent{
		BusinessId:    businessId,
		UnitId:        unitId,
		EventType:     eventType,
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
		UserName:      userName,
	}
	return tx.Create(&event).Error
}

func PaginateTimeline(ctx context.Context,
	limit *int,
	after *string,
	unitId *int,
	eventType *TimelineEventType,
) (*TimelineEventsConnection, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if unitId != nil && *unitId > 0 {
		dbCtx.Where("unit_id = ?", *unitId)
	}
	if eventType != nil && *eventType != "" {
		dbCtx.Where("event_type = ?", *eventType)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[TimelineEvent](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection TimelineEventsConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		timelineEventsEdge := TimelineEventsEdge(edge)
		connection.Edges = append(connection.Edges, &timelineEventsEdge)
	}

	return &connection, err
}
