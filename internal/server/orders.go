package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/orderdesk/internal/order/domain"
)

func (s *Server) NewDraft(c *gin.Context) {
	draft, err := s.orderSvc.NewDraft(c.Request.Context(), clientID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": draft})
}

// ComputeOrder recomputes every line and the totals of an order being edited.
func (s *Server) ComputeOrder(c *gin.Context) {
	var req orderdomain.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Compute(c.Request.Context(), clientID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// SubmitOrder answers 200 for backend-side failures too; the result carries
// success=false and the message to show.
func (s *Server) SubmitOrder(c *gin.Context) {
	var req orderdomain.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Submit(c.Request.Context(), clientID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orderSvc.Get(c.Request.Context(), clientID(c), strings.TrimSpace(c.Param("number")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) OrderVoucher(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	r, err := s.orderSvc.Voucher(c.Request.Context(), clientID(c), number)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s.pdf"`, voucherFilename(number)),
	}
	c.DataFromReader(http.StatusOK, -1, "application/pdf", r, headers)
}

func voucherFilename(number string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, number)
}
