package handler

import (
	"html/template"
	"net/http"
	"net/url"

	"gasdepot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callbackTemplate = "payment_callback.html"

const callbackPage = `{{define "payment_callback.html"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if .Success}}<meta http-equiv="refresh" content="3;url={{.RedirectURL}}">{{end}}
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;background:#f6f7f9;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0}
.card{background:#fff;border-radius:12px;padding:2rem 2.5rem;box-shadow:0 2px 12px rgba(0,0,0,.08);max-width:28rem;text-align:center}
h1{font-size:1.4rem;margin:0 0 .75rem}
.ok{color:#15803d}.ko{color:#b91c1c}
a{color:#1d4ed8}
</style>
</head>
<body>
<div class="card">
{{if .Success}}
<h1 class="ok">{{.Title}}</h1>
<p>{{.Message}}</p>
<p>Redirecting to your order&hellip; <a href="{{.RedirectURL}}">Continue</a></p>
<script>setTimeout(function(){window.location.href={{.RedirectURL}};},3000);</script>
{{else}}
<h1 class="ko">{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="{{.RedirectURL}}">Back to cart</a></p>
{{end}}
{{if .Reference}}<p><small>Reference: {{.Reference}}</small></p>{{end}}
</div>
</body>
</html>{{end}}`

// Templates returns the HTML templates rendered by handlers.
func Templates() *template.Template {
	return template.Must(template.New("pages").Parse(callbackPage))
}

type callbackView struct {
	Success     bool
	Title       string
	Message     string
	Reference   string
	RedirectURL string
}

// CallbackHandler renders the page the provider redirects the customer to.
type CallbackHandler struct {
	payments    *service.PaymentService
	frontendURL string
	log         *zap.Logger
}

func NewCallbackHandler(payments *service.PaymentService, frontendURL string, log *zap.Logger) *CallbackHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CallbackHandler{payments: payments, frontendURL: frontendURL, log: log.Named("callback")}
}

// Handle handles GET /api/payments/callback.
func (h *CallbackHandler) Handle(c *gin.Context) {
	ref := firstQuery(c, "reference", "trxref", "notchpay_trxref")
	res, err := h.payments.HandleCallback(c.Request.Context(), ref)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		msg := "We could not confirm your payment right now. If you were charged, your order will be updated shortly."
		if ref == "" {
			status = http.StatusBadRequest
			msg = "The payment reference is missing."
		}
		c.HTML(status, callbackTemplate, h.failure(ref, msg))
		return
	}
	if !res.Success {
		c.HTML(http.StatusOK, callbackTemplate, h.failure(res.Reference, "Your payment was not completed. No charge was confirmed."))
		return
	}
	c.HTML(http.StatusOK, callbackTemplate, callbackView{
		Success:     true,
		Title:       "Payment successful",
		Message:     "Thank you! Your gas order is confirmed.",
		Reference:   res.Reference,
		RedirectURL: h.frontendURL + "/order-confirmation?reference=" + url.QueryEscape(res.Reference),
	})
}

func (h *CallbackHandler) failure(ref, msg string) callbackView {
	return callbackView{
		Title:       "Payment failed",
		Message:     msg,
		Reference:   ref,
		RedirectURL: h.frontendURL + "/cart",
	}
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}
