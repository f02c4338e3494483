package reconciliation

import (
	"errors"
	nethttp "net/http"

	"github.com/flowfin/go-conciliador/internal/common/http"
	"github.com/flowfin/go-conciliador/internal/common/validation"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/services"

	"github.com/gofiber/fiber/v2"
)

type reconciliationHandler struct {
	reconSvc services.ReconService
}

// New reconciliation handler will initialize the reconciliations/ resources endpoint
func New(app fiber.Router, reconSvc services.ReconService) {
	handler := reconciliationHandler{
		reconSvc: reconSvc,
	}
	api := app.Group("/reconciliations")
	api.Post("/", handler.runReconciliation())
	api.Get("/", handler.getReconRuns())
}

func (h *reconciliationHandler) runReconciliation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(models.ReconcileRequest)
		if err := c.BodyParser(req); err != nil {
			return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
		}
		if err := validation.ValidateStruct(req); err != nil {
			return http.RestErrorValidationResponse(c, err)
		}

		resp, err := h.reconSvc.Reconcile(c.UserContext(), *req)
		if err != nil {
			var detail models.ErrorDetail
			if errors.As(err, &detail) {
				return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
			}
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		return http.RestSuccessResponse(c, nethttp.StatusOK, resp)
	}
}

func (h *reconciliationHandler) getReconRuns() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(models.ListReconRunsRequest)
		if err := c.QueryParser(req); err != nil {
			return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
		}

		runs, total, err := h.reconSvc.GetListReconRuns(c.UserContext(), *req)
		if err != nil {
			var detail models.ErrorDetail
			if errors.As(err, &detail) {
				return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
			}
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		return http.RestSuccessResponseListWithTotalRows(c, runs, total)
	}
}
