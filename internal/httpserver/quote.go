package httpserver

import (
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	quotesvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/quote"
	"github.com/gin-gonic/gin"
)

func submitQuoteHandler(quotes QuoteService, baskets BasketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		var req quotesvc.SubmitInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		basket, err := baskets.Get(c.Request.Context(), basketsvc.Owner{AccountID: account.ID})
		if err != nil {
			respondError(c, err)
			return
		}
		q, err := quotes.Submit(c.Request.Context(), *account, basket, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"quote": q})
	}
}

func listQuotesHandler(quotes QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		list, err := quotes.List(c.Request.Context(), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []domain.Quote{}
		}
		c.JSON(http.StatusOK, gin.H{"quotes": list})
	}
}

func getQuoteHandler(quotes QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		q, err := quotes.Get(c.Request.Context(), account.ID, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quote": q})
	}
}

type decideQuoteRequest struct {
	Approve bool `json:"approve"`
}

func decideQuoteHandler(quotes QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req decideQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		q, err := quotes.Decide(c.Request.Context(), c.Param("id"), req.Approve)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quote": q})
	}
}
