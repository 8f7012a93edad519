package api

import (
	v1 "github.com/distinctmentorship/payments/internal/api/v1"
	"github.com/gofiber/fiber/v2"
)

const prefixV1 = "/api/v1/"

func SetupRoutes(app *fiber.App, handler *v1.Handler) {
	app.Get("/ping", handler.Pong)
	app.Post(prefixV1+"charges", handler.InitiateCharge)
	app.Post(prefixV1+"charges/status", handler.QueryStatus)
	app.Post(prefixV1+"charges/confirm", handler.ConfirmCharge)
	app.Post(prefixV1+"callbacks/mpesa", handler.MpesaCallback)
	app.Post(prefixV1+"webhooks/paystack", handler.PaystackWebhook)
}
