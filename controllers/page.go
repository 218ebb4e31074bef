package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/config"
	"github.com/cjy-OIer/blog/models"
)

// Page carries what the shared header and footer need.
type Page struct {
	SiteTitle    string
	Title        string
	BodyClass    string
	Toast        *models.Toast
	ToastSeconds int
}

func newPage(cfg config.AppConfig, title string) Page {
	full := cfg.SiteTitle
	if title != "" {
		full = title + " - " + cfg.SiteTitle
	}
	return Page{SiteTitle: cfg.SiteTitle, Title: full, ToastSeconds: cfg.ToastSeconds}
}

// ErrorPage is a full-page error.
type ErrorPage struct {
	Page
	Heading string
	Message string
}

// RenderError writes error.html with the given status.
func RenderError(ctx *gin.Context, cfg config.AppConfig, status int, heading, message string) {
	ctx.HTML(status, "error.html", ErrorPage{Page: newPage(cfg, heading), Heading: heading, Message: message})
}

// wantsJSON reports whether the caller is a script rather than a browser form.
func wantsJSON(ctx *gin.Context) bool {
	if ctx.ContentType() == gin.MIMEJSON {
		return true
	}
	return ctx.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// statusFor maps a board or loader failure to the page status.
func statusFor(failed bool) int {
	if failed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
