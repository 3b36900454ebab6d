package controller

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/service"
	"estatedeal_backend/pkg/logger"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var kindStatus = map[service.Kind]int{
	service.KindBadRequest:   fiber.StatusBadRequest,
	service.KindInvalidCode:  fiber.StatusBadRequest,
	service.KindUnauthorized: fiber.StatusUnauthorized,
	service.KindForbidden:    fiber.StatusForbidden,
	service.KindNotFound:     fiber.StatusNotFound,
	service.KindConflict:     fiber.StatusConflict,
	service.KindInvalidState: fiber.StatusConflict,
	service.KindExpired:      fiber.StatusUnprocessableEntity,
}

// respondError writes err as {"error","code","kind"}. Anything that is not a
// service error is logged and reported as a 500.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if status, ok := kindStatus[svcErr.Kind]; ok {
			return c.Status(status).JSON(fiber.Map{
				"error": svcErr.Message,
				"code":  svcErr.Code,
				"kind":  svcErr.Kind,
			})
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Errorf("Request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
		"code":  "internal",
	})
}

func badRequest(code, message string) error {
	return service.NewError(service.KindBadRequest, code, message)
}

// bindJSON parses the body into dst and runs its validate tags.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("invalid_input", "Invalid input")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// bindOptionalJSON leaves dst at its zero value when the body is empty, so
// the service decides what a missing field means.
func bindOptionalJSON(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return bindJSON(c, dst)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("invalid_input", err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return badRequest("validation_failed", "invalid fields: "+strings.Join(fields, ", "))
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, badRequest("invalid_"+name, "Invalid "+strings.ReplaceAll(name, "_", " "))
	}
	return uint(id), nil
}
