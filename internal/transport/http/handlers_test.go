package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
	infraredis "quizmaster/internal/infra/redis"
	"quizmaster/internal/questions"
)

type fakeGenerator struct {
	content string
	err     error
	calls   int
	last    generateRequest
}

func (g *fakeGenerator) Generate(_ context.Context, topic string, difficulty domain.Difficulty, count int) (string, error) {
	g.calls++
	g.last = generateRequest{Topic: topic, Difficulty: string(difficulty), Count: count}
	return g.content, g.err
}

func newTestRouter(gen questions.Generator) (*http.ServeMux, *memory.ResultStore) {
	results := memory.NewResultStore()
	service := app.NewQuizService(memory.NewSessionStore(), results, questions.NewStaticSource(questions.SampleBank()),
		app.WithScheduler(app.NewManualScheduler()))
	return NewRouter(RouterConfig{
		Service:   service,
		Profiles:  NewProfiles("test-secret", nil),
		Generator: gen,
	}), results
}

func postJSON(t *testing.T, h http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestGeneratorHandlerValidation(t *testing.T) {
	gen := &fakeGenerator{content: "{}"}
	router, _ := newTestRouter(gen)

	cases := []struct {
		body string
		want string
	}{
		{`not json`, "Invalid request"},
		{`{"topic":"Go","difficulty":"easy"}`, "Missing required fields: topic, difficulty, count"},
		{`{"topic":"","difficulty":"easy","count":3}`, "Missing required fields: topic, difficulty, count"},
		{`{"topic":"Go","count":3}`, "Missing required fields: topic, difficulty, count"},
	}
	for _, tc := range cases {
		rec := postJSON(t, router, "/api/interview-question", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.body, rec.Code)
		}
		if got := decodeError(t, rec); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.body, tc.want, got)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not be called for invalid requests")
	}
}

func TestGeneratorHandlerFailureAndSuccess(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota")}
	router, _ := newTestRouter(gen)

	rec := postJSON(t, router, "/api/interview-question", `{"topic":"Go","difficulty":"Hard","count":2}`)
	if rec.Code != http.StatusInternalServerError || decodeError(t, rec) != "Error generating interview questions" {
		t.Fatalf("unexpected failure response %d", rec.Code)
	}

	gen.err = nil
	gen.content = `{"questions":[{"question":"q","options":["a","b","c","d"],"answer":2}]}`
	rec = postJSON(t, router, "/api/interview-question", `{"topic":" Go ","difficulty":"hard","count":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gen.last.Topic != "Go" || gen.last.Difficulty != "hard" || gen.last.Count != 2 {
		t.Fatalf("unexpected generator input %+v", gen.last)
	}
	qs, err := questions.DecodePayload(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response should decode as a question payload: %v", err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswerIndex != 2 {
		t.Fatalf("unexpected questions %+v", qs)
	}
}

func TestGeneratorRouteFeedsHTTPSource(t *testing.T) {
	gen := &fakeGenerator{content: `{"questions":[{"question":"q","options":["a","b","c","d"],"answer":0}]}`}
	router, _ := newTestRouter(gen)
	server := httptest.NewServer(router)
	defer server.Close()

	src := questions.NewHTTPSource(server.URL+"/api/interview-question", server.Client())
	qs, err := src.FetchQuestions(context.Background(), "Go", domain.DifficultyMedium, 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("expected one question, got %d", len(qs))
	}
}

func TestProfileRoundTrip(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a cookie, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/api/profile", `{"userName":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected blank name to be rejected, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/api/profile", `{"userName":"  Grace "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected profile cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var body profileBody
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if rec.Code != http.StatusOK || body.UserName != "Grace" {
		t.Fatalf("unexpected profile %d %+v", rec.Code, body)
	}
}

func TestResultsHandler(t *testing.T) {
	router, results := newTestRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	_ = results.SaveResult(context.Background(), domain.Completion{
		SessionID: "abc",
		UserName:  "Heidi",
		Result:    domain.SessionResult{ScorePercent: 60, Topic: "golang"},
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/abc", nil))
	var view resultView
	_ = json.NewDecoder(rec.Body).Decode(&view)
	if rec.Code != http.StatusOK || view.ScorePercent != 60 || view.Passed {
		t.Fatalf("unexpected result %d %+v", rec.Code, view)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthzReportsLiveSessions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), ContextTimeoutEnabled: true})
	defer client.Close()
	sessions := infraredis.NewSessionStore(client, time.Minute)
	service := app.NewQuizService(sessions, memory.NewResultStore(), questions.NewStaticSource(questions.SampleBank()),
		app.WithScheduler(app.NewManualScheduler()))
	router := NewRouter(RouterConfig{Service: service, LiveSessions: sessions.Live})

	service.Open("Ivan")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Live-Sessions") != "1" {
		t.Fatalf("unexpected healthz %d live=%q", rec.Code, rec.Header().Get("X-Live-Sessions"))
	}

	mr.Close()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", rec.Code)
	}
}
