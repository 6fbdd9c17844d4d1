package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guzobus/guzo-backend/internal/models"
	"github.com/guzobus/guzo-backend/internal/repository"
	"github.com/guzobus/guzo-backend/internal/services"
)

// CreateCompany registers a bus company (operator only)
func CreateCompany(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name        string  `json:"name" binding:"required"`
			Rating      float64 `json:"rating"`
			ReviewCount int     `json:"reviewCount"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(input.Name) == "" {
			c.JSON(400, gin.H{"error": "Company name is required"})
			return
		}

		company := models.Company{
			Name:        input.Name,
			Rating:      input.Rating,
			ReviewCount: input.ReviewCount,
		}
		if err := store.CreateCompany(c.Request.Context(), &company); err != nil {
			c.JSON(500, gin.H{"error": "Failed to create company"})
			return
		}

		c.JSON(201, company)
	}
}

// GetCompany retrieves a single company
func GetCompany(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid company id"})
			return
		}

		company, err := store.CompanyByID(c.Request.Context(), uint(companyId))
		if err != nil {
			if errors.Is(err, models.ErrCompanyNotFound) {
				c.JSON(404, gin.H{"error": "Company not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to fetch company"})
			return
		}

		c.JSON(200, company)
	}
}

// UploadCompanyLogo uploads a company's logo image (operator only)
func UploadCompanyLogo(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid company id"})
			return
		}

		company, err := store.CompanyByID(c.Request.Context(), uint(companyId))
		if err != nil {
			if errors.Is(err, models.ErrCompanyNotFound) {
				c.JSON(404, gin.H{"error": "Company not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to fetch company"})
			return
		}

		file, err := c.FormFile("logo")
		if err != nil {
			c.JSON(400, gin.H{"error": "Logo file is required"})
			return
		}

		imagePath, err := services.UploadImage(file, services.FolderCompanies)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload logo"})
			return
		}

		company.LogoURL = services.GetImageURL(imagePath)
		if err := store.SaveCompany(c.Request.Context(), company); err != nil {
			c.JSON(500, gin.H{"error": "Failed to update company"})
			return
		}

		c.JSON(200, company)
	}
}
