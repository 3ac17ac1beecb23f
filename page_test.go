package main

import (
	"net/http"
	"strings"
	"testing"
)

func TestPage_RendersForm(t *testing.T) {
	ts := setupTest(t, 2)
	w := ts.do("GET", "/", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"당뇨 맞춤 식단 생성기",
		`name="age"`,
		"필요 칼로리 계산하기",
		"랜덤 식단 뽑기",
		"adsbygoogle.js?client=ca-pub-1833210144684624",
		`<meta property="og:locale" content="ko_KR">`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("idle page should not auto-refresh")
	}
	if strings.Contains(body, "추천 식단 구성") {
		t.Error("idle page shows a meal")
	}
}

func TestPage_CalculateShowsResult(t *testing.T) {
	ts := setupTest(t, 2)
	w := ts.postForm("/calculate", referenceForm("45"))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", w.Code, w.Header().Get("Location"))
	}

	body := ts.do("GET", "/", "", "").Body.String()
	if !strings.Contains(body, "1,851 kcal") {
		t.Errorf("result not rendered; page:\n%s", body)
	}
	if !strings.Contains(body, `value="45"`) {
		t.Error("form did not keep the typed age")
	}
}

// TestPage_MissingAgeKeepsResult checks a failed calculation leaves the
// previous result on screen and shows the notice exactly once.
func TestPage_MissingAgeKeepsResult(t *testing.T) {
	ts := setupTest(t, 2)
	ts.postForm("/calculate", referenceForm("45"))
	ts.postForm("/calculate", referenceForm(""))

	body := ts.do("GET", "/", "", "").Body.String()
	if !strings.Contains(body, `role="alert"`) || !strings.Contains(body, "나이, 키, 체중을 모두 입력해주세요.") {
		t.Error("validation notice not shown")
	}
	if !strings.Contains(body, "1,851 kcal") {
		t.Error("previous result was replaced by a failed calculation")
	}

	body = ts.do("GET", "/", "", "").Body.String()
	if strings.Contains(body, `role="alert"`) {
		t.Error("notice shown twice")
	}
}

func TestPage_NonNumericRejected(t *testing.T) {
	ts := setupTest(t, 2)
	form := referenceForm("45")
	form.Set("weight", "seventy")
	ts.postForm("/calculate", form)

	body := ts.do("GET", "/", "", "").Body.String()
	if !strings.Contains(body, "체중을 올바르게 입력해주세요.") {
		t.Error("non-numeric weight not reported")
	}
	if strings.Contains(body, " kcal</p>") {
		t.Error("non-numeric input produced a result")
	}
}

// TestPage_GenerateFlow walks the whole page: generate, ad modal counting
// down, then the meal revealed with the per-meal target.
func TestPage_GenerateFlow(t *testing.T) {
	ts := setupTest(t, 2)
	ts.postForm("/calculate", referenceForm("45"))

	w := ts.postForm("/generate", referenceForm("45"))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}

	body := ts.do("GET", "/", "", "").Body.String()
	for _, want := range []string{`http-equiv="refresh"`, "잠시 후 식단이 생성됩니다", "2초", "생성 중..."} {
		if !strings.Contains(body, want) {
			t.Errorf("counting page missing %q", want)
		}
	}
	if strings.Contains(body, "추천 식단 구성") {
		t.Fatal("meal shown before the countdown finished")
	}

	ft := ts.clock.last(t)
	ft.tick(t)
	ft.tick(t)
	eventually(t, func() bool {
		return strings.Contains(ts.do("GET", "/", "", "").Body.String(), "추천 식단 구성")
	}, "meal never revealed")

	body = ts.do("GET", "/", "", "").Body.String()
	for _, want := range []string{"🍚 곡류군", "🥩 어육류군", "🥦 채소군", "🥑 지방군", "2 단위", "3 단위", "1 단위", "617 kcal (한 끼 기준)"} {
		if !strings.Contains(body, want) {
			t.Errorf("result page missing %q", want)
		}
	}
	if strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("page still refreshing after reveal")
	}
}

func TestPage_GenerateRunsCalculatorFirst(t *testing.T) {
	ts := setupTest(t, 1)
	ts.postForm("/generate", referenceForm("45"))

	body := ts.do("GET", "/", "", "").Body.String()
	if !strings.Contains(body, "1,851 kcal") {
		t.Error("generate without a result did not run the calculator")
	}
}
