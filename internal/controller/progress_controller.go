package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/service"
)

type ProgressInput struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment"`
}

var progressService *service.ProgressService

func InitProgressController(progress *service.ProgressService) {
	progressService = progress
}

func ListProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	entries, err := progressService.List(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func AppendProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(ProgressInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	entry, err := progressService.Append(c.UserContext(), middleware.GetPrincipal(c), id, model.Milestone(input.Status), input.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
