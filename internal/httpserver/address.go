package httpserver

import (
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/gin-gonic/gin"
)

type createAddressRequest struct {
	Label           string `json:"label"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Company         string `json:"company"`
	StreetName      string `json:"streetName" binding:"required"`
	City            string `json:"city" binding:"required"`
	PostalCode      string `json:"postalCode" binding:"required"`
	Country         string `json:"country" binding:"required"`
	Phone           string `json:"phone"`
	DefaultShipping bool   `json:"defaultShipping"`
	DefaultBilling  bool   `json:"defaultBilling"`
}

func listAddressesHandler(addresses AddressRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		list, err := addresses.ListByAccount(c.Request.Context(), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []domain.Address{}
		}
		c.JSON(http.StatusOK, gin.H{"addresses": list})
	}
}

func createAddressHandler(addresses AddressRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		var req createAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		created, err := addresses.Create(c.Request.Context(), domain.Address{
			AccountID:       account.ID,
			Label:           req.Label,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Company:         req.Company,
			StreetName:      req.StreetName,
			City:            req.City,
			PostalCode:      req.PostalCode,
			Country:         req.Country,
			Phone:           req.Phone,
			DefaultShipping: req.DefaultShipping,
			DefaultBilling:  req.DefaultBilling,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"address": created})
	}
}
