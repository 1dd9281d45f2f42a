package httpserver

import (
	"errors"
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	"github.com/gin-gonic/gin"
)

type basketResponse struct {
	Items         []domain.BasketItem `json:"items"`
	Rows          int                 `json:"rows"`
	ItemCount     int                 `json:"itemCount"`
	SubtotalCents int64               `json:"subtotalCents"`
	MaxItems      int                 `json:"maxItems"`
}

func toBasketResponse(b domain.Basket, policy domain.Policy) basketResponse {
	items := b.Items
	if items == nil {
		items = []domain.BasketItem{}
	}
	return basketResponse{
		Items:         items,
		Rows:          b.Rows(),
		ItemCount:     b.ItemCount(),
		SubtotalCents: b.SubtotalCents(),
		MaxItems:      policy.MaxItems,
	}
}

// requireOwner aborts requests that carry neither a bearer token nor a
// device header.
func requireOwner(c *gin.Context) (basketsvc.Owner, bool) {
	owner, ok := ownerFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "authentication or " + deviceHeader + " header required"})
	}
	return owner, ok
}

func getBasketHandler(baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		b, err := baskets.Get(c.Request.Context(), owner)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toBasketResponse(b, policyFrom(c)))
	}
}

func addItemHandler(baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		var req basketsvc.AddItemInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		policy := policyFrom(c)
		b, err := baskets.AddItem(c.Request.Context(), owner, policy, req)
		if err != nil {
			if errors.Is(err, basketsvc.ErrBasketLimit) {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toBasketResponse(b, policy))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func updateQuantityHandler(baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		b, err := baskets.UpdateQuantity(c.Request.Context(), owner, c.Param("itemId"), req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toBasketResponse(b, policyFrom(c)))
	}
}

func toggleBulkPricingHandler(baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		b, err := baskets.ToggleBulkPricing(c.Request.Context(), owner, c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toBasketResponse(b, policyFrom(c)))
	}
}

func removeItemHandler(baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		b, err := baskets.RemoveItem(c.Request.Context(), owner, c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toBasketResponse(b, policyFrom(c)))
	}
}

func clearBasketHandler(baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		if err := baskets.Clear(c.Request.Context(), owner); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
