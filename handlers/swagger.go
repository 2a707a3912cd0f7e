package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// swaggerCSP lets the docs page load swagger-ui from its CDN. Every other
// route keeps the strict default policy.
const swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' https://unpkg.com; img-src 'self' data:"

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the to-do API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Security-Policy", swaggerCSP)
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>todo-service - Swagger</title>
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
  "info": { "title": "todo-service", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Credentials": { "type": "object", "required": ["username", "password"], "properties": { "username": {"type":"string"}, "password": {"type":"string"} } },
      "AuthResponse": { "type": "object", "properties": { "token": {"type":"string"}, "userId": {"type":"string"}, "username": {"type":"string"} } },
      "Item": { "type": "object", "properties": { "id": {"type":"string"}, "text": {"type":"string"}, "completed": {"type":"boolean"}, "userId": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "errors": {"type":"array","items":{"type":"string"}} } }
    }
  },
  "paths": {
    "/auth/register": {
      "post": {
        "summary": "Create an account",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Credentials"} } } },
        "responses": { "201": { "description": "account created, token returned" }, "400": { "description": "validation failed or username taken" }, "429": { "description": "too many attempts" } }
      }
    },
    "/auth/login": {
      "post": {
        "summary": "Log in with username and password",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Credentials"} } } },
        "responses": { "200": { "description": "token returned" }, "400": { "description": "invalid credentials" }, "429": { "description": "too many attempts" } }
      }
    },
    "/items": {
      "get": { "summary": "List the caller's items", "security": [{"bearer": []}], "responses": { "200": { "description": "items" }, "401": { "description": "not authorized" } } },
      "post": {
        "summary": "Create an item",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"text":{"type":"string"}}} } } },
        "responses": { "201": { "description": "created item" }, "400": { "description": "validation failed" }, "401": { "description": "not authorized" } }
      }
    },
    "/items/{id}": {
      "put": {
        "summary": "Update text and/or completed",
        "security": [{"bearer": []}],
        "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"text":{"type":"string"},"completed":{"type":"boolean"}}} } } },
        "responses": { "200": { "description": "updated item" }, "400": { "description": "validation failed" }, "401": { "description": "not authorized" }, "404": { "description": "not found or not owned" } }
      },
      "delete": {
        "summary": "Delete an item",
        "security": [{"bearer": []}],
        "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}],
        "responses": { "200": { "description": "deleted" }, "401": { "description": "not authorized" }, "404": { "description": "not found or not owned" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
