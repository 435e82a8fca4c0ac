package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/models/reports"
)

func ShopCashbookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		date, ok := dateQuery(c, "date")
		if !ok {
			return
		}
		cashbook, err := reports.GetShopCashbook(c.Request.Context(), date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cashbook)
	}
}

func WorkshopCashbookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		date, ok := dateQuery(c, "date")
		if !ok {
			return
		}
		cashbook, err := reports.GetWorkshopCashbook(c.Request.Context(), date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cashbook)
	}
}

func closeUnitDayHandler(code models.UnitCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager, models.UserRoleCashier) {
			return
		}
		var input models.NewDailyCashClose
		if !bindJSON(c, &input) {
			return
		}
		close, err := models.CloseUnitDay(c.Request.Context(), code, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, close)
	}
}

func ShopCashCloseHandler() gin.HandlerFunc {
	return closeUnitDayHandler(models.UnitCodeShop)
}

func WorkshopCashCloseHandler() gin.HandlerFunc {
	return closeUnitDayHandler(models.UnitCodeWorkshop)
}

func AdminCashbookReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		fromDate, ok := dateQuery(c, "date_from")
		if !ok {
			return
		}
		toDate, ok := dateQuery(c, "date_to")
		if !ok {
			return
		}
		var unitCode *models.UnitCode
		if raw := strQuery(c, "unit"); raw != nil {
			uc := models.UnitCode(*raw)
			if !uc.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unit must be shop or workshop"})
				return
			}
			unitCode = &uc
		}
		rows, err := reports.GetCashbookReport(c.Request.Context(), fromDate, toDate, unitCode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"closes": rows})
	}
}

func AdminUnitOverviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		overview, err := reports.GetUnitOverview(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}
