package httpserver

import (
	"errors"
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	checkoutsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/checkout"
	quotesvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/quote"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP responses. Checkout precondition
// failures carry a redirectTo hint so the client can route the user to the
// surface where the problem can be fixed.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, checkoutsvc.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, basketsvc.ErrBasketLimit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case errors.Is(err, checkoutsvc.ErrNoActiveCart):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "redirectTo": "/cart"})
	case errors.Is(err, checkoutsvc.ErrQuoteNotEligible):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "redirectTo": "/quotes"})
	case errors.Is(err, checkoutsvc.ErrInvalidTransition),
		errors.Is(err, checkoutsvc.ErrAddressIncomplete),
		errors.Is(err, checkoutsvc.ErrTermsNotAccepted),
		errors.Is(err, quotesvc.ErrEmptyBasket),
		errors.Is(err, quotesvc.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
