package handler

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TemplatesFS holds the HTML templates for the submission page. The
// router loads them once at startup via SetHTMLTemplate.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// HandleHome renders the submission form. A flash query parameter set by
// the submit redirect is displayed above the form.
func HandleHome(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Flash": c.Query("flash"),
	})
}
