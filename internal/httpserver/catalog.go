package httpserver

import (
	"net/http"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/gin-gonic/gin"
)

func listPartsHandler(parts PartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := parts.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []domain.Part{}
		}
		c.JSON(http.StatusOK, gin.H{"parts": list})
	}
}

func getPartHandler(parts PartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := parts.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"part": p})
	}
}

func listCategoriesHandler(categories CategoryRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := categories.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []domain.Category{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": list})
	}
}
