package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/service"
)

type TicketInput struct {
	PropertyID  *uint  `json:"property_id"`
	Subject     string `json:"subject" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

type MessageInput struct {
	Content string `json:"content" validate:"required"`
}

var supportService *service.SupportService

func InitSupportController(support *service.SupportService) {
	supportService = support
}

func OpenTicket(c *fiber.Ctx) error {
	input := new(TicketInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	t, err := supportService.Open(c.UserContext(), middleware.GetPrincipal(c), service.TicketInput{
		PropertyID:  input.PropertyID,
		Subject:     input.Subject,
		Description: input.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func ListTickets(c *fiber.Ctx) error {
	tickets, err := supportService.List(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tickets)
}

func ListTicketMessages(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	messages, err := supportService.Messages(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

func PostTicketMessage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(MessageInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	m, err := supportService.PostMessage(c.UserContext(), middleware.GetPrincipal(c), id, input.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func CloseTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	t, err := supportService.Close(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}
