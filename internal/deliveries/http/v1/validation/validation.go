package validation

import (
	"errors"
	nethttp "net/http"

	"github.com/flowfin/go-conciliador/internal/common/http"
	commonvalidation "github.com/flowfin/go-conciliador/internal/common/validation"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/services"

	"github.com/gofiber/fiber/v2"
)

type validationHandler struct {
	validationSvc services.ValidationService
}

// New validation handler will initialize the validations/ resources endpoint
func New(app fiber.Router, validationSvc services.ValidationService) {
	handler := validationHandler{
		validationSvc: validationSvc,
	}
	api := app.Group("/validations")
	api.Post("/", handler.submitDecision())
	api.Get("/:company", handler.getCompanyDecisions())
}

func (h *validationHandler) submitDecision() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(models.SubmitDecisionRequest)
		if err := c.BodyParser(req); err != nil {
			return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
		}
		if err := commonvalidation.ValidateStruct(req); err != nil {
			return http.RestErrorValidationResponse(c, err)
		}

		entry, overwritten, err := h.validationSvc.SubmitDecision(c.UserContext(), *req)
		if err != nil {
			var detail models.ErrorDetail
			if errors.As(err, &detail) {
				if detail.Code == models.ErrKeyCounterpartAlreadyClaimed {
					return http.RestErrorResponse(c, nethttp.StatusConflict, err)
				}
				return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
			}
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		return http.RestSuccessResponse(c, nethttp.StatusOK, submitDecisionResponse{
			Kind:        "validation",
			Entry:       entry,
			Overwritten: overwritten,
		})
	}
}

type submitDecisionResponse struct {
	Kind        string              `json:"kind" example:"validation"`
	Entry       *models.LedgerEntry `json:"entry"`
	Overwritten bool                `json:"overwritten"`
}

func (h *validationHandler) getCompanyDecisions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := c.Params("company")

		entries, err := h.validationSvc.GetCompanyDecisions(c.UserContext(), companyID)
		if err != nil {
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		return http.RestSuccessResponseListWithTotalRows(c, entries, len(entries))
	}
}
