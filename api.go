package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jep4/diabete-random-generate/internal/nutrition"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// fieldValue takes a JSON number, string or null and keeps its raw text, so
// the API hits the same validation as the HTML form ("" is missing, "abc" is
// not a number).
type fieldValue string

func (f *fieldValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = fieldValue(s)
		return nil
	}
	*f = fieldValue(b)
	return nil
}

// profileRequest is the JSON body for the calculator.
type profileRequest struct {
	Age      fieldValue `json:"age"`
	Height   fieldValue `json:"height"`
	Weight   fieldValue `json:"weight"`
	Sex      fieldValue `json:"sex"`
	Activity fieldValue `json:"activity"`
}

func (r profileRequest) input() nutrition.Input {
	return nutrition.Input{
		Age:      string(r.Age),
		Height:   string(r.Height),
		Weight:   string(r.Weight),
		Sex:      string(r.Sex),
		Activity: string(r.Activity),
	}
}

// caloriesResponse is returned by POST /api/calories.
type caloriesResponse struct {
	Profile nutrition.Profile `json:"profile"`
	nutrition.Result
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getState returns the session snapshot without consuming the notice.
// GET /api/state.
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).view(false))
}

// getCatalog returns the food table and meal pattern.
// GET /api/catalog.
func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}

// postCalories runs the calculator. On a validation error the stored result is
// left untouched and the user-facing notice is returned.
// POST /api/calories.
func (h *Handler) postCalories(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s := currentSession(c)
	if err := s.calculate(req.input()); err != nil {
		apiError(c, http.StatusBadRequest, nutrition.NoticeFor(err))
		return
	}

	v := s.view(false)
	c.JSON(http.StatusOK, caloriesResponse{Profile: *v.Profile, Result: *v.Result})
}

// postGenerateMeal starts the ad countdown. The body is optional; when given
// it replaces the stored form values first.
// POST /api/meal/generate. Returns 202 with the snapshot; poll GET /api/state
// until ad_gate.state leaves "counting".
func (h *Handler) postGenerateMeal(c *gin.Context) {
	var in *nutrition.Input
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		v := req.input()
		in = &v
	}

	s := currentSession(c)
	_ = s.generate(in, h.cfg.CountdownSeconds, h.sampleMeal)
	c.JSON(http.StatusAccepted, s.view(false))
}

// deleteSession tears the session down, cancelling any pending countdown.
// DELETE /api/session. Returns 204.
func (h *Handler) deleteSession(c *gin.Context) {
	h.sessions.remove(currentSession(c).id)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
