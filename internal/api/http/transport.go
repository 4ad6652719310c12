package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type inProcessTransport struct {
	app *fiber.App
}

// InProcessTransport serves client requests straight from app without opening a listener.
func InProcessTransport(app *fiber.App) http.RoundTripper {
	return inProcessTransport{app: app}
}

func (t inProcessTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}
