package httpserver

import (
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		list, err := orders.List(c.Request.Context(), account.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, _ := accountFrom(c)
		o, err := orders.Get(c.Request.Context(), account.ID, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o})
	}
}
