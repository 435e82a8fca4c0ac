package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onyangohw/hardware_backend/models"
)

func ListJobTypesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		jobTypes, err := models.ListAllJobTypes(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, jobTypes)
	}
}

func CreateJobTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		var input models.NewJobType
		if !bindJSON(c, &input) {
			return
		}
		jobType, err := models.CreateJobType(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, jobType)
	}
}

func GetJobTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		jobType, err := models.GetJobType(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "job type not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, jobType)
	}
}

func UpdateJobTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewJobType
		if !bindJSON(c, &input) {
			return
		}
		jobType, err := models.UpdateJobType(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, jobType)
	}
}

func DeleteJobTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRoles(c, models.UserRoleOwner, models.UserRoleManager) {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		jobType, err := models.DeleteJobType(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, jobType)
	}
}
