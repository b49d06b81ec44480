package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers Swagger/OpenAPI endpoints for the document service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
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
    <title>docserve - Swagger</title>
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

// OpenAPI document for the delivery route and the management API.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docserve", "version": "v0.1.0" },
  "paths": {
    "/documents/{id}/{filename}": {
      "get": {
        "summary": "Deliver a document: redirect to storage, stream from disk, or 404 depending on DOCS_SERVE_METHOD",
        "parameters": [
          { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} },
          { "name": "filename", "in": "path", "required": true, "schema": {"type":"string"} }
        ],
        "responses": { "200": { "description": "file bytes" }, "206": { "description": "partial content" }, "302": { "description": "redirect to storage URL" }, "404": { "description": "unknown document, filename mismatch or delivery unavailable" } }
      }
    },
    "/api/documents": {
      "get": { "summary": "List documents", "responses": { "200": { "description": "document summaries" } } },
      "post": {
        "summary": "Upload a document",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"},"title":{"type":"string"}},"required":["file"]}}}},
        "responses": { "201": { "description": "created" }, "400": { "description": "missing file" }, "401": { "description": "unauthorized" } }
      }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Document metadata", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a document and its stored file", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/documents/{id}/stats": {
      "get": { "summary": "Delivery count", "responses": { "200": { "description": "served count" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
