package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/period"
)

func (s *Server) ListReconciliationResults(c *gin.Context) {
	results, err := s.reconciliationSvc.ListResults(c.Request.Context(), c.Param("gridArea"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

// RunReconciliation compares our settlement totals against the latest hub
// wholesale settlement for the grid area and period.
func (s *Server) RunReconciliation(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad start %q", c.Query("start")))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad end %q", c.Query("end")))
		return
	}
	p, err := period.Closed(start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.reconciliationSvc.Run(c.Request.Context(), c.Param("gridArea"), p)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"result": result.Result,
		"lines":  result.Lines,
	}})
}
