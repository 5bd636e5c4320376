package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxTextLength       int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware enforces content types and screens free-text fields (journal
// content, chat messages) for markup injection before handlers see them.
// Questionnaire payloads are validated downstream by the assessment package.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = 20000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		path := c.Path()

		if strings.Contains(path, "/api/v1/journal") || strings.Contains(path, "/api/v1/chat") {
			if c.Method() == "POST" || c.Method() == "PUT" {
				var req map[string]interface{}
				if err := c.BodyParser(&req); err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid JSON format",
					})
				}

				text, _ := req["content"].(string)
				if len(text) > cfg.MaxTextLength {
					return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
						"error": "Content exceeds maximum length",
					})
				}

				if containsXSS(text) {
					cfg.Logger.Warn("Potential XSS attempt",
						zap.String("ip", c.IP()),
						zap.String("path", path),
					)
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid content",
					})
				}
			}
		}

		return c.Next()
	}
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}
