package main

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Jep4/diabete-random-generate/internal/adgate"
	"github.com/Jep4/diabete-random-generate/internal/exchange"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "mealgen_session"

// Handler holds shared dependencies (catalog, sampler, sessions, config) for
// all route handlers.
type Handler struct {
	cfg      config
	catalog  exchange.Catalog
	sampler  *exchange.Sampler
	sessions *sessionStore
}

func newHandler(cfg config, catalog exchange.Catalog, sampler *exchange.Sampler, sessions *sessionStore) *Handler {
	return &Handler{cfg: cfg, catalog: catalog, sampler: sampler, sessions: sessions}
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// sessionMiddleware resolves the visitor's session from the cookie, creating
// one when missing or expired, and sets it on the context.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		s, created := h.sessions.get(id)
		if created {
			ttl := int(h.cfg.SessionTTL.Seconds())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, s.id, ttl, "/", "", false, true)
		}
		c.Set("session", s)
		c.Next()
	}
}

// currentSession returns the session set by sessionMiddleware.
func currentSession(c *gin.Context) *session {
	return c.MustGet("session").(*session)
}

// sampleMeal draws one meal from the handler's catalog.
func (h *Handler) sampleMeal() exchange.Meal {
	return h.sampler.Sample(h.catalog)
}

var kcalPrinter = message.NewPrinter(language.Korean)

// formatKcal renders 1851 as "1,851".
func formatKcal(n int) string {
	return kcalPrinter.Sprintf("%d", n)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"kcal":     formatKcal,
		"counting": func(s adgate.State) bool { return s == adgate.Counting },
	}
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html"))
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// registerRoutes registers all page, SEO and API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(loadTemplates())

	// Crawlers get these without a session.
	router.GET("/robots.txt", h.getRobots)
	router.GET("/sitemap.xml", h.getSitemap)

	page := router.Group("/", h.sessionMiddleware())
	page.GET("/", h.getPage)
	page.POST("/calculate", h.postCalculate)
	page.POST("/generate", h.postGenerate)

	api := router.Group("/api", h.sessionMiddleware())
	api.GET("/state", h.getState)
	api.GET("/catalog", h.getCatalog)
	api.POST("/calories", h.postCalories)
	api.POST("/meal/generate", h.postGenerateMeal)
	api.DELETE("/session", h.deleteSession)
}

// newRouter builds the gin engine with the default logger and recovery.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}
