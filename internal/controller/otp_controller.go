package controller

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/service"
)

type OTPIssueInput struct {
	BuyerID uint `json:"buyer_id" validate:"required"`
}

type OTPVerifyInput struct {
	BuyerID uint   `json:"buyer_id" validate:"required"`
	OTP     string `json:"otp" validate:"required,numeric"`
}

var otpService *service.OTPService

func InitOTPController(otps *service.OTPService) {
	otpService = otps
}

// IssueOTP returns the code in the response as well as delivering it.
func IssueOTP(c *fiber.Ctx) error {
	input := new(OTPIssueInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	code, err := otpService.Issue(c.UserContext(), middleware.GetPrincipal(c), input.BuyerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "OTP generated",
		"otp":     code,
	})
}

func VerifyOTP(c *fiber.Ctx) error {
	input := new(OTPVerifyInput)
	if err := bindJSON(c, input); err != nil {
		return respondError(c, err)
	}

	if err := otpService.Verify(c.UserContext(), middleware.GetPrincipal(c), input.BuyerID, input.OTP); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "OTP verified successfully"})
}
