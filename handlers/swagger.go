package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
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
    <title>docvault — Swagger</title>
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

// Minimal OpenAPI document describing the document and search endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docvault", "version": "v0.1.0" },
  "paths": {
    "/api/search": {
      "get": { "summary": "Prefix search over one user's document titles", "parameters": [ {"name":"user_id","in":"query","required":true,"schema":{"type":"string"}}, {"name":"title","in":"query","schema":{"type":"string"}} ], "responses": { "200": { "description": "matching documents (possibly empty)" } } }
    },
    "/api/documents": {
      "get": { "summary": "List documents", "responses": { "200": { "description": "all documents" } } },
      "post": { "summary": "Create a document record", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"userId":{"type":"string"},"title":{"type":"string"},"hashValue":{"type":"string"},"fileExt":{"type":"string"}}}}}}, "responses": { "201": { "description": "created" }, "409": { "description": "duplicate title" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Get a document", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Rename a document", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"}}}}}}, "responses": { "200": { "description": "renamed" }, "409": { "description": "duplicate title" } } },
      "delete": { "summary": "Delete a document", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/upload": {
      "post": { "summary": "Upload a file and index it by title", "responses": { "201": { "description": "stored and indexed" }, "409": { "description": "duplicate content or title" } } }
    },
    "/api/users": {
      "get": { "summary": "List users", "responses": { "200": { "description": "users" } } },
      "post": { "summary": "Create a user", "responses": { "201": { "description": "created" } } }
    },
    "/api/categories": {
      "get": { "summary": "List categories", "responses": { "200": { "description": "categories" } } },
      "post": { "summary": "Add a category", "responses": { "201": { "description": "created" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
