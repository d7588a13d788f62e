package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a minimal OpenAPI description of the board service.
// - GET /swagger/index.html -> HTML page loading the OpenAPI JSON
// - GET /swagger/doc.json   -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>jobhuntboard API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "jobhuntboard", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": { "summary": "Exchange credentials or authorization code, start board sync", "responses": { "200": { "description": "tokens returned" }, "401": { "description": "authentication failed" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Sign out and stop board sync", "responses": { "200": { "description": "logged out" } } }
    },
    "/auth/me": {
      "get": { "summary": "Current identity", "responses": { "200": { "description": "identity" }, "204": { "description": "signed out" } } }
    },
    "/api/board": {
      "get": { "summary": "Full board document with the saving indicator", "responses": { "200": { "description": "board" } } }
    },
    "/api/board/companies": {
      "get": { "summary": "Filtered, sorted company view", "parameters": [{ "name": "sort", "in": "query", "schema": { "type": "string", "enum": ["rating_desc","name_asc","industry_asc","status_asc"] } }], "responses": { "200": { "description": "companies" } } },
      "post": { "summary": "Add a company from modal input", "responses": { "200": { "description": "updated board" } } }
    },
    "/api/board/files": {
      "post": { "summary": "Attach files to the shisaku note (500KB cap per file)", "responses": { "200": { "description": "accepted, possibly with a size warning" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
