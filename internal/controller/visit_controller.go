package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/service"
)

type AvailabilityInput struct {
	AvailableDate time.Time `json:"available_date" validate:"required"`
}

type VisitInput struct {
	PropertyID    uint      `json:"property_id" validate:"required"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
	BuyerNotes    string    `json:"buyer_notes"`
}

type VisitUpdateInput struct {
	Status      *string `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	SellerNotes *string `json:"seller_notes"`
}

type CancelInput struct {
	CancellationReason string `json:"cancellation_reason"`
}

var visitService *service.VisitService

func InitVisitController(visits *service.VisitService) {
	visitService = visits
}

func AddAvailability(c *fiber.Ctx) error {
	propertyID, err := paramID(c, "property_id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(AvailabilityInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	a, err := visitService.AddAvailability(c.UserContext(), middleware.GetPrincipal(c), propertyID, input.AvailableDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func ListAvailability(c *fiber.Ctx) error {
	propertyID, err := paramID(c, "property_id")
	if err != nil {
		return respondError(c, err)
	}

	slots, err := visitService.ListAvailability(c.UserContext(), propertyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slots)
}

func RequestVisit(c *fiber.Ctx) error {
	input := new(VisitInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	v, err := visitService.Request(c.UserContext(), middleware.GetPrincipal(c), input.PropertyID, input.ScheduledDate, input.BuyerNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func ListSellerVisits(c *fiber.Ctx) error {
	visits, err := visitService.ListForSeller(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(visits)
}

func UpdateVisit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(VisitUpdateInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	var status *model.VisitStatus
	if input.Status != nil {
		s := model.VisitStatus(*input.Status)
		status = &s
	}
	v, err := visitService.Update(c.UserContext(), middleware.GetPrincipal(c), id, status, input.SellerNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

func cancelInput(c *fiber.Ctx) (*CancelInput, error) {
	input := new(CancelInput)
	if len(c.Body()) == 0 {
		return input, nil
	}
	if err := bindJSON(c, input); err != nil {
		return nil, err
	}
	return input, nil
}

func BuyerCancelVisit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input, err := cancelInput(c)
	if err != nil {
		return respondError(c, err)
	}

	v, err := visitService.BuyerCancel(c.UserContext(), middleware.GetPrincipal(c), id, input.CancellationReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Visit cancelled",
		"visit":   v,
	})
}

func SellerCancelVisit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := visitService.SellerCancel(c.UserContext(), middleware.GetPrincipal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func AdminCancelVisit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input, err := cancelInput(c)
	if err != nil {
		return respondError(c, err)
	}

	v, err := visitService.AdminCancel(c.UserContext(), middleware.GetPrincipal(c), id, input.CancellationReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Visit cancelled",
		"visit":   v,
	})
}
