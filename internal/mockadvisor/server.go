// Package mockadvisor is a stand-in advisory backend that answers every
// question with canned guidance and two sample citations.
package mockadvisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/iksnae/eebc-chat/internal"
)

// Options configures the mock backend
type Options struct {
	// FailStatus, when non-zero, makes every chat request fail with this status
	FailStatus int
	// FailBody is the plain-text body sent with FailStatus
	FailBody string
	// Delay is added before each chat reply
	Delay time.Duration
}

// Server wraps the fiber app
type Server struct {
	app  *fiber.App
	opts Options
}

// New builds the mock backend routes
func New(opts Options) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             1 << 20,
	})
	app.Use(recover.New())

	s := &Server{app: app, opts: opts}
	app.Get("/health", s.handleHealth)
	app.Post("/api/chat", s.handleChat)
	return s
}

// App returns the fiber app, mainly for app.Test in tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	internal.LogInfo("mock advisor listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req internal.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid request body: " + err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).SendString("message is required")
	}
	internal.LogDebug("mock advisor: %q (context: %t)", req.Message, req.Context != nil)

	if s.opts.Delay > 0 {
		time.Sleep(s.opts.Delay)
	}
	if s.opts.FailStatus != 0 {
		body := s.opts.FailBody
		if body == "" {
			body = "mock advisor configured to fail"
		}
		return c.Status(s.opts.FailStatus).SendString(body)
	}
	return c.JSON(Answer(req))
}

// Answer builds the canned reply for req
func Answer(req internal.ChatRequest) internal.ChatResponse {
	applies, reason := assess(req.Context)

	var b strings.Builder
	b.WriteString("Based on the code excerpts below:\n\n")
	if req.Context != nil && req.Context.FloorAreaM2 != nil {
		fmt.Fprintf(&b, "- Your floor area of **%g m²** has been considered.\n", *req.Context.FloorAreaM2)
	}
	if req.Context != nil && req.Context.WWRPercent != nil {
		fmt.Fprintf(&b, "- Check the fenestration limits for a WWR of **%g%%**.\n", *req.Context.WWRPercent)
	}
	if req.Context != nil && req.Context.HVACType != nil {
		fmt.Fprintf(&b, "- Review minimum efficiency requirements for **%s** systems.\n", *req.Context.HVACType)
	}
	b.WriteString("- Confirm the building envelope and lighting power density requirements.")

	high, low := 0.873, 0.641
	return internal.ChatResponse{
		Answer:  b.String(),
		Applies: applies,
		Reason:  reason,
		Sources: []internal.SourceCitation{
			{ChunkID: "p4_c1", Page: 4, Score: &high, Excerpt: "This Code shall apply to buildings with a total connected load of 100 kVA or more..."},
			{ChunkID: "p27_c2", Page: 27, Score: &low, Excerpt: "The window to wall ratio of the building shall not exceed..."},
		},
	}
}

// assess mimics the applicability check: large or high-demand buildings
// are covered, small described buildings partially, undescribed unknown.
func assess(ctx *internal.BuildingContext) (internal.Applies, string) {
	if ctx == nil {
		return internal.AppliesUnknown, "No building details were provided."
	}
	if ctx.ElectricalDemandKVA != nil && *ctx.ElectricalDemandKVA >= 100 {
		return internal.AppliesYes, "Connected load is at or above 100 kVA."
	}
	if ctx.FloorAreaM2 != nil {
		if *ctx.FloorAreaM2 >= 500 {
			return internal.AppliesYes, "Floor area is at or above 500 m²."
		}
		return internal.AppliesPartial, "Floor area is below 500 m²; some provisions may still apply."
	}
	return internal.AppliesUnknown, "Floor area and electrical demand are needed to decide."
}
