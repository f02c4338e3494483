package closure

import (
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/flowfin/go-conciliador/internal/common/http"
	"github.com/flowfin/go-conciliador/internal/common/validation"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/services"

	"github.com/gofiber/fiber/v2"
)

type closureHandler struct {
	validationSvc services.ValidationService
}

// New closure handler will initialize the closures/ resources endpoint
func New(app fiber.Router, validationSvc services.ValidationService) {
	handler := closureHandler{
		validationSvc: validationSvc,
	}
	api := app.Group("/closures")
	api.Post("/:company/:date", handler.closeDay())
	api.Get("/:company", handler.getClosures())
	api.Get("/:company/export", handler.exportClosures())
}

func (h *closureHandler) closeDay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(models.CloseDayRequest)
		if err := c.BodyParser(req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
		}
		req.CompanyID = c.Params("company")
		req.Date = c.Params("date")
		if err := validation.ValidateStruct(req); err != nil {
			return http.RestErrorValidationResponse(c, err)
		}

		closure, err := h.validationSvc.CloseDay(c.UserContext(), *req)
		if err != nil {
			var detail models.ErrorDetail
			if errors.As(err, &detail) {
				if detail.Code == models.ErrKeyDayNotFullyResolved {
					return http.RestErrorResponse(c, nethttp.StatusConflict, err)
				}
				return http.RestErrorResponse(c, nethttp.StatusBadRequest, err)
			}
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		return http.RestSuccessResponse(c, nethttp.StatusOK, closure)
	}
}

func (h *closureHandler) getClosures() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := c.Params("company")

		closures, err := h.validationSvc.GetClosures(c.UserContext(), companyID)
		if err != nil {
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		return http.RestSuccessResponseListWithTotalRows(c, closures, len(closures))
	}
}

func (h *closureHandler) exportClosures() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := c.Params("company")

		closures, err := h.validationSvc.GetClosures(c.UserContext(), companyID)
		if err != nil {
			return http.RestErrorResponse(c, nethttp.StatusInternalServerError, err)
		}

		rows := make([][]string, 0, len(closures))
		for _, closure := range closures {
			rows = append(rows, closure.ToCSVRow())
		}
		fileName := fmt.Sprintf("fechamento_%s.csv", companyID)
		return http.CSVSuccessResponse(c, fileName, models.CSVHeaderDayClosure, rows)
	}
}
