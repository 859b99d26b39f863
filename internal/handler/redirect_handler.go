package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"dynqr/redirector/internal/service"
)

const statusPageName = "status.html"

var statusPage = template.Must(template.New(statusPageName).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;display:flex;min-height:100vh;margin:0;align-items:center;justify-content:center;background:#f6f7f9;color:#222}
main{max-width:28rem;padding:2rem;text-align:center}
h1{font-size:1.4rem}
</style>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</main>
</body>
</html>
`))

const notFoundMessage = "This QR code does not exist."

type RedirectHandler struct {
	redirectService service.RedirectService
	statusCode      int
}

func NewRedirectHandler(redirectService service.RedirectService, statusCode int) *RedirectHandler {
	return &RedirectHandler{redirectService: redirectService, statusCode: statusCode}
}

type statusResponse struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Resolve handles a scan of a printed code.
func (h *RedirectHandler) Resolve(c *gin.Context) {
	out := h.redirectService.Resolve(c.Request.Context(), c.Param("shortId"))

	// destinations are mutable, so nothing along the way may cache the answer
	c.Header("Cache-Control", "no-store")

	switch out.Kind {
	case service.OutcomeRedirect:
		c.Redirect(h.statusCode, out.TargetURL)
	case service.OutcomeExpired:
		renderStatus(c, http.StatusGone, "QR code unavailable", statusResponse{
			Status:  out.Kind.String(),
			Reason:  string(out.Reason),
			Message: out.Message,
		})
	default:
		renderStatus(c, http.StatusNotFound, "QR code not found", statusResponse{
			Status:  service.OutcomeNotFound.String(),
			Message: notFoundMessage,
		})
	}
}

func renderStatus(c *gin.Context, code int, title string, body statusResponse) {
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(code, body)
	default:
		c.HTML(code, statusPageName, gin.H{"Title": title, "Message": body.Message})
	}
}
