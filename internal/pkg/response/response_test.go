package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestError_FillsDefaultMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Error(c, fiber.StatusServiceUnavailable, "", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable || env.Message != MessageServiceUnavailable {
		t.Fatalf("got %d %q", resp.StatusCode, env.Message)
	}
}

func TestWrite_OutOfRangeStatus(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Success(c, 42, "", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestDefaultMessage(t *testing.T) {
	cases := map[int]string{
		fiber.StatusOK:         MessageOK,
		fiber.StatusCreated:    MessageCreated,
		fiber.StatusNotFound:   MessageNotFound,
		fiber.StatusBadGateway: MessageInternalServerError,
		fiber.StatusTeapot:     MessageError,
	}
	for status, want := range cases {
		if got := DefaultMessage(status); got != want {
			t.Fatalf("%d: got %q want %q", status, got, want)
		}
	}
}
