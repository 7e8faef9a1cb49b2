package mockgateway

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/peekdata/datagateway-go/internal/logging"
)

const (
	// MinAPIKeyLength is the shortest key the stub will accept
	MinAPIKeyLength = 32

	// APIKeyHeader is the header the client sends its key in
	APIKeyHeader = "X-API-Key"
)

// ValidateAPIKey reports whether key is long enough and not blank
func ValidateAPIKey(key string) bool {
	return len(key) >= MinAPIKeyLength && strings.TrimSpace(key) != ""
}

// APIKeyAuth guards the query routes. An empty key list leaves them open.
func APIKeyAuth(logger *logging.Logger, apiKeys []string) fiber.Handler {
	if len(apiKeys) == 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	accepted := acceptedKeys(logger, apiKeys)

	return func(c *fiber.Ctx) error {
		key := requestKey(c)
		if key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing API key")
		}
		if _, ok := accepted[key]; !ok {
			logging.WarnCtx(c.UserContext(), "Unknown API key", "path", c.Path(), "key", maskAPIKey(key))
			return fiber.NewError(fiber.StatusUnauthorized, "unknown API key")
		}
		return c.Next()
	}
}

// acceptedKeys drops configured keys that are too short to be real
func acceptedKeys(logger *logging.Logger, apiKeys []string) map[string]struct{} {
	accepted := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		if ValidateAPIKey(key) {
			accepted[key] = struct{}{}
			continue
		}
		logger.Warn("Ignoring short API key", "key", maskAPIKey(key), "min_length", MinAPIKeyLength)
	}
	if len(accepted) == 0 {
		logger.Error("No usable API key configured, every query will be rejected", "configured", len(apiKeys))
	}
	return accepted
}

// requestKey reads X-API-Key, then Authorization with an optional Bearer prefix
func requestKey(c *fiber.Ctx) string {
	if key := c.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return auth
}

func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
