package handler

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed docs/openapi.yaml docs/swagger.html
var docsFS embed.FS

var (
	openAPISpec = mustReadDoc("docs/openapi.yaml")
	swaggerPage = mustReadDoc("docs/swagger.html")
)

func mustReadDoc(name string) []byte {
	b, err := docsFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}

// SwaggerSpec serves the OpenAPI document for the webhook and admin routes.
func SwaggerSpec(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "application/yaml", openAPISpec)
}

// SwaggerUI serves a read-only Swagger UI page backed by /swagger/spec.
func SwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", swaggerPage)
}
