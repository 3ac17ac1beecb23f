package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jep4/diabete-random-generate/internal/nutrition"
)

// activityLabels are the form's option texts, keyed by level name.
var activityLabels = map[string]string{
	"sedentary": "거의 없음 (숨쉬기 운동만)",
	"light":     "가벼운 활동 (주 1~3회 운동)",
	"moderate":  "보통 활동 (주 3~5회 운동)",
	"active":    "많은 활동 (주 6~7회 격한 운동)",
}

type activityOption struct {
	Value    string
	Label    string
	Selected bool
}

// pageData is everything templates/index.html reads.
type pageData struct {
	View       sessionView
	Activities []activityOption
	Female     bool
	SiteURL    string
	AdClient   string
}

func (h *Handler) newPageData(v sessionView) pageData {
	selected, ok := nutrition.LookupActivity(v.Form.Activity)
	if !ok {
		selected = nutrition.DefaultActivityLevel
	}
	opts := make([]activityOption, 0, len(nutrition.ActivityLevels))
	for _, level := range nutrition.ActivityLevels {
		opts = append(opts, activityOption{Value: level, Label: activityLabels[level], Selected: level == selected})
	}
	return pageData{
		View:       v,
		Activities: opts,
		Female:     v.Form.Sex == string(nutrition.Female),
		SiteURL:    h.cfg.SiteURL,
		AdClient:   h.cfg.AdClient,
	}
}

// getPage renders the single page for the current session.
// GET /.
func (h *Handler) getPage(c *gin.Context) {
	v := currentSession(c).view(true)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html", h.newPageData(v))
}

// postCalculate runs the calculator on the submitted form and redirects back.
// POST /calculate. A validation failure leaves the previous result in place
// and shows the notice on the next render.
func (h *Handler) postCalculate(c *gin.Context) {
	var in nutrition.Input
	if err := c.ShouldBind(&in); err != nil {
		apiError(c, http.StatusBadRequest, "invalid form")
		return
	}
	if err := currentSession(c).calculate(in); err != nil {
		log.Printf("[postCalculate] validation: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// postGenerate starts the ad countdown and redirects back; the page then
// refreshes itself until the meal is revealed.
// POST /generate.
func (h *Handler) postGenerate(c *gin.Context) {
	var in nutrition.Input
	if err := c.ShouldBind(&in); err != nil {
		apiError(c, http.StatusBadRequest, "invalid form")
		return
	}
	if err := currentSession(c).generate(&in, h.cfg.CountdownSeconds, h.sampleMeal); err != nil {
		log.Printf("[postGenerate] calculation skipped: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}
