package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) paymentID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: errorPayload{
			Type:    "invalid_request",
			Message: "invalid payment id",
		}})
		return 0, false
	}
	return id, true
}

func (s *Server) ProcessPayment(c *gin.Context) {
	id, ok := s.paymentID(c)
	if !ok {
		return
	}

	entry, err := s.ledgerSvc.ProcessPayment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) UpdateIncome(c *gin.Context) {
	id, ok := s.paymentID(c)
	if !ok {
		return
	}

	entry, err := s.ledgerSvc.UpdateIncomeForPayment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) RemoveIncome(c *gin.Context) {
	id, ok := s.paymentID(c)
	if !ok {
		return
	}

	removed, err := s.ledgerSvc.RemoveIncomeForPayment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": removed, "removed": len(removed)})
}

func (s *Server) SyncPayments(c *gin.Context) {
	report, err := s.ledgerSvc.SyncExistingPayments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
