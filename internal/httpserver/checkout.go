package httpserver

import (
	"net/http"

	checkoutsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type startCheckoutRequest struct {
	Source  string `json:"source" binding:"required"`
	QuoteID string `json:"quoteId"`
}

func startCheckoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		var req startCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		source := checkoutsvc.Source(req.Source)
		if source != checkoutsvc.SourceCart && source != checkoutsvc.SourceQuote {
			c.JSON(http.StatusBadRequest, gin.H{"message": "source must be cart or quote"})
			return
		}
		sess, err := checkout.Start(c.Request.Context(), *account, source, req.QuoteID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"session": sess})
	}
}

func getCheckoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		sess, err := checkout.Get(c.Param("id"), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	}
}

func selectAddressesHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		var req checkoutsvc.AddressSelection
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		sess, err := checkout.SelectAddresses(c.Request.Context(), c.Param("id"), account.ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	}
}

func advanceCheckoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		sess, err := checkout.Advance(c.Param("id"), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	}
}

func backCheckoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		sess, err := checkout.Back(c.Param("id"), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	}
}

type acceptTermsRequest struct {
	Accepted bool `json:"accepted"`
}

func acceptTermsHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		var req acceptTermsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		sess, err := checkout.AcceptTerms(c.Param("id"), account.ID, req.Accepted)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	}
}

func placeOrderHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		sess, err := checkout.PlaceOrder(c.Request.Context(), c.Param("id"), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	}
}

func completePaymentHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		var req checkoutsvc.PaymentOutcome
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		route, err := checkout.CompletePayment(c.Request.Context(), c.Param("id"), account.ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"redirectTo": route})
	}
}

func abandonCheckoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		checkout.Abandon(c.Param("id"), account.ID)
		c.Status(http.StatusNoContent)
	}
}
