package handlers

import (
	"sole-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:   fiber.StatusBadRequest,
	service.KindConflict:     fiber.StatusConflict,
	service.KindNotFound:     fiber.StatusNotFound,
	service.KindUnauthorized: fiber.StatusUnauthorized,
}

// respondError writes domain errors as {"error": CODE} with their mapped
// status. Anything else is logged and reported as a 500 with fallback.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	if domainErr, ok := service.AsError(err); ok {
		status, known := kindStatus[domainErr.Kind]
		if !known {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": domainErr.Code,
		})
	}

	logger.Error(fallback,
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func badRequest(c *fiber.Ctx, code string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": code,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "UNAUTHORIZED",
	})
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// pathID parses a uuid route parameter. A malformed id can never match a row,
// so it is reported with the resource's not-found code.
func pathID(c *fiber.Ctx, name string, notFound *service.Error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// scope resolves the caller and the :entityId parameter used by every
// entity-scoped route.
func scope(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}
	entityID, err := pathID(c, "entityId", service.ErrEntityNotFound)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, entityID, nil
}

// scopeError answers a failed scope() call.
func scopeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if err == fiber.ErrUnauthorized {
		return unauthorized(c)
	}
	return respondError(c, logger, err, "Request failed")
}
