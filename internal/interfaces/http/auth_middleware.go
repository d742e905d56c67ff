package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/fieldservice-api/internal/application/dto"
	"github.com/jhoicas/fieldservice-api/pkg/config"
	"github.com/jhoicas/fieldservice-api/pkg/jwt"
)

// Locals keys para UserID y TenantID en Fiber.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
)

// TenantConfig indica de dónde sale el tenant de confianza.
type TenantConfig struct {
	Mode      string // config.AuthModeHeader | config.AuthModeJWT
	Header    string
	JWTSecret string
	JWTIssuer string
}

// TenantMiddleware resuelve el tenant de la petición y lo deja en c.Locals.
// Modo header: lee el header configurado. Modo jwt: valida el Bearer Token y usa su claim tenant_id.
func TenantMiddleware(cfg TenantConfig) fiber.Handler {
	if cfg.Mode == config.AuthModeJWT {
		return jwtTenant(cfg.JWTSecret, cfg.JWTIssuer)
	}
	return func(c *fiber.Ctx) error {
		tenantID := strings.TrimSpace(c.Get(cfg.Header))
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TENANT", Message: cfg.Header + " requerido"})
		}
		// c.Get apunta al buffer de fasthttp, que se reutiliza; el tenant termina guardado en el almacén.
		c.Locals(LocalTenantID, utils.CopyString(tenantID))
		return c.Next()
	}
}

func jwtTenant(secret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, tenantID, err := jwt.Parse(secret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (solo en modo jwt).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetTenantID devuelve el tenant del contexto (después de TenantMiddleware).
func GetTenantID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalTenantID).(string)
	return s
}
