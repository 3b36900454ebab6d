package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/service"
	"estatedeal_backend/pkg/utils/jwt"
)

type RegisterInput struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	Role                 string `json:"role" validate:"required,oneof=seller buyer broker"`
	Name                 string `json:"name" validate:"required"`
	Phone                string `json:"phone"`
	IdentificationNumber string `json:"identification_number" validate:"required_if=Role buyer"`
	HandleVisits         *bool  `json:"handle_visits"`
	PayoutAccount        string `json:"payout_account"`
	BrokerID             *uint  `json:"broker_id" validate:"omitempty,gt=0"`
	PropertyID           *uint  `json:"property_id" validate:"omitempty,gt=0"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var accountService *service.AccountService

func InitAuthController(accounts *service.AccountService) {
	accountService = accounts
}

func tokenResponse(user *model.User, p model.Principal) (fiber.Map, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"token":     token,
		"role":      user.Role,
		"principal": p,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	}, nil
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	user, p, err := accountService.Register(c.UserContext(), service.RegisterInput{
		Email:                input.Email,
		Password:             input.Password,
		Role:                 model.Role(input.Role),
		Name:                 input.Name,
		Phone:                input.Phone,
		IdentificationNumber: input.IdentificationNumber,
		HandleVisits:         input.HandleVisits,
		PayoutAccount:        input.PayoutAccount,
		BrokerID:             input.BrokerID,
		PropertyID:           input.PropertyID,
	})
	if err != nil {
		return respondError(c, err)
	}

	body, err := tokenResponse(user, p)
	if err != nil {
		return respondError(c, err)
	}
	body["message"] = "Registration successful"
	return c.Status(fiber.StatusCreated).JSON(body)
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	user, p, err := accountService.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return respondError(c, err)
	}

	body, err := tokenResponse(user, p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(body)
}

// GetMe returns the principal the caller acts as.
func GetMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"principal": middleware.GetPrincipal(c)})
}
