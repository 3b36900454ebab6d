package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/service"
)

type LeadInput struct {
	BuyerID    uint `json:"buyer_id" validate:"required"`
	PropertyID uint `json:"property_id" validate:"required"`
}

type LeadOTPInput struct {
	OTPCode string `json:"otp_code"`
}

type LeadOutcomeInput struct {
	Interested *bool `json:"interested" validate:"required"`
}

var leadService *service.LeadService

func InitLeadController(leads *service.LeadService) {
	leadService = leads
}

func CreateLead(c *fiber.Ctx) error {
	input := new(LeadInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	lead, err := leadService.Create(c.UserContext(), middleware.GetPrincipal(c), input.BuyerID, input.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"lead":  lead,
		"state": lead.State(),
	})
}

func GetMyLeads(c *fiber.Ctx) error {
	leads, err := leadService.ListForBroker(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(leads)
}

func VerifyLeadOTP(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(LeadOTPInput)
	if err := bindOptionalJSON(c, input); err != nil {
		return respondError(c, err)
	}

	lead, err := leadService.VerifyOTP(c.UserContext(), middleware.GetPrincipal(c), id, input.OTPCode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "OTP verified successfully",
		"lead":    lead,
	})
}

func SetLeadOutcome(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(LeadOutcomeInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	lead, err := leadService.SetOutcome(c.UserContext(), middleware.GetPrincipal(c), id, input.Interested)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"lead":  lead,
		"state": lead.State(),
	})
}
