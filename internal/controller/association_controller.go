package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/service"
)

type AssociationInput struct {
	BuyerID    uint `json:"buyer_id" validate:"required"`
	PropertyID uint `json:"property_id" validate:"required"`
}

type TemporaryAssociationInput struct {
	PropertyID                    uint   `json:"property_id" validate:"required"`
	TempBuyerName                 string `json:"temp_buyer_name" validate:"required"`
	TempBuyerIdentificationNumber string `json:"temp_buyer_identification_number" validate:"required"`
}

type AssociationResponseInput struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

var associationService *service.AssociationService

func InitAssociationController(associations *service.AssociationService) {
	associationService = associations
}

func CreateAssociation(c *fiber.Ctx) error {
	input := new(AssociationInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	a, err := associationService.CreateWithBuyer(c.UserContext(), middleware.GetPrincipal(c), input.BuyerID, input.PropertyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func CreateTemporaryAssociation(c *fiber.Ctx) error {
	input := new(TemporaryAssociationInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	a, err := associationService.CreateTemporary(c.UserContext(), middleware.GetPrincipal(c),
		input.PropertyID, input.TempBuyerName, input.TempBuyerIdentificationNumber)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func ListAssociations(c *fiber.Ctx) error {
	list, err := associationService.List(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func RespondAssociation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(AssociationResponseInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	a, err := associationService.Respond(c.UserContext(), middleware.GetPrincipal(c), id, input.Accepted)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

func BindPendingAssociations(c *fiber.Ctx) error {
	n, err := associationService.BindPending(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bound": n})
}
