package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers are thin: parameter parsing and error translation only; all
// business rules live in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, userSvc service.UserService, acctSvc service.AccountService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoints
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Users
	app.Post("/users", CreateUser(userSvc))
	app.Get("/users", ListUsers(userSvc))
	app.Get("/users/:id", GetUser(userSvc))
	app.Put("/users/:id", UpdateUser(userSvc))
	app.Delete("/users/:id", DeleteUser(userSvc))

	// Avatars
	app.Put("/users/:id/avatar", UploadAvatar(userSvc))
	app.Get("/users/:id/avatar", GetAvatarURL(userSvc))
	app.Delete("/users/:id/avatar", DeleteAvatar(userSvc))

	// Accounts
	app.Post("/users/:id/accounts", OpenAccount(acctSvc))
	app.Get("/users/:id/accounts", ListUserAccounts(acctSvc))
	app.Get("/accounts/:id", GetAccount(acctSvc))
	app.Post("/accounts/:id/deposits", Deposit(acctSvc))
	app.Post("/accounts/:id/withdrawals", Withdraw(acctSvc))
}
