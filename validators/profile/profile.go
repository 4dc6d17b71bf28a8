package profileValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"nssc-portal/middleware"
	"nssc-portal/models"
	"nssc-portal/wizard"
)

// Step validates the :step route parameter. The body itself is checked by the
// step's own rules once the step is known.
func Step() fiber.Handler {
	return func(c *fiber.Ctx) error {
		step, err := strconv.Atoi(c.Params("step"))
		if err != nil || step < int(wizard.StepPrimary) || step > wizard.ProfileSteps {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid profile step!", nil)
		}
		if c.Method() == fiber.MethodPost && len(c.Body()) > 0 && !c.Is("json") {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Request body must be JSON!", nil)
		}

		c.Locals("step", step)
		return c.Next()
	}
}

// Qualification parses one qualification entry. Derived fields are recomputed
// later, so only the shape is checked here.
func Qualification() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(models.QualificationEntry)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.MarksObtained = strings.TrimSpace(reqData.MarksObtained)
		reqData.OutOfMarks = strings.TrimSpace(reqData.OutOfMarks)
		reqData.CGPA = strings.TrimSpace(reqData.CGPA)

		c.Locals("validatedQualification", reqData)
		return c.Next()
	}
}

// QualificationIndex validates the :index route parameter.
func QualificationIndex() fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil || index < 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"index": "Index must be a non-negative number!"}, nil)
		}

		c.Locals("index", index)
		return c.Next()
	}
}

// Asset validates a photo or signature upload.
func Asset() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		kind := c.Params("kind")
		if kind != "photo" && kind != "sign" {
			errors["kind"] = "Kind must be one of: photo sign!"
		}

		file, err := c.FormFile("file")
		if err != nil {
			errors["file"] = "File is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors, fiber.Map{"kind": kind})
		}

		c.Locals("assetKind", kind)
		c.Locals("assetFile", file)
		return c.Next()
	}
}
