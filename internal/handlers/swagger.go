package handlers

// @title Todo API
// @version 1.0
// @description Per-user to-do items with attachment uploads

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name todos
// @tag.description To-do item operations
