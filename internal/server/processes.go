package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	processdomain "github.com/nordlux/elcore/internal/process/domain"
	"github.com/nordlux/elcore/pkg/apperr"
)

func (s *Server) ListProcesses(c *gin.Context) {
	var query struct {
		Type   string `form:"type"`
		Status string `form:"status"`
		Gsrn   string `form:"gsrn"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "invalid query"))
		return
	}

	filter := processdomain.ListFilter{Limit: query.Limit}
	if query.Type != "" {
		pt := processdomain.ProcessType(query.Type)
		filter.ProcessType = &pt
	}
	if query.Status != "" {
		status := processdomain.ProcessStatus(query.Status)
		filter.Status = &status
	}
	if query.Gsrn != "" {
		filter.Gsrn = &query.Gsrn
	}

	processes, err := s.processSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": processes})
}

func (s *Server) GetProcessByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad process id %q", c.Param("id")))
		return
	}
	resp, err := s.processSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"process":     resp.Process,
		"transitions": resp.Transitions,
	}})
}

type initiateSupplierChangeRequest struct {
	Gsrn                string  `json:"gsrn"`
	EffectiveDate       string  `json:"effective_date"`
	Cpr                 *string `json:"cpr"`
	Cvr                 *string `json:"cvr"`
	PreviousSupplierGln string  `json:"previous_supplier_gln"`
}

func (s *Server) InitiateSupplierChange(c *gin.Context) {
	var req initiateSupplierChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "invalid request body"))
		return
	}
	effective, err := time.Parse(time.RFC3339, req.EffectiveDate)
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad effective_date %q", req.EffectiveDate))
		return
	}

	process, err := s.processSvc.InitiateSupplierChange(c.Request.Context(), processdomain.InitiateSupplierChangeRequest{
		Gsrn:                req.Gsrn,
		EffectiveDate:       effective,
		Cpr:                 req.Cpr,
		Cvr:                 req.Cvr,
		PreviousSupplierGln: req.PreviousSupplierGln,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": process})
}

type executeSupplierChangeRequest struct {
	CustomerID string `json:"customer_id"`
}

// ExecuteSupplierChange applies a confirmed supplier change: the incumbent
// supply ends at the effective date and ours begins.
func (s *Server) ExecuteSupplierChange(c *gin.Context) {
	processID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad process id %q", c.Param("id")))
		return
	}
	var req executeSupplierChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "invalid request body"))
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad customer_id %q", req.CustomerID))
		return
	}

	process, err := s.processSvc.ExecuteSupplierChange(c.Request.Context(), processID, customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": process})
}
