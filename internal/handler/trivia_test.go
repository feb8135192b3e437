package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur-trivia/internal/config"
	"github.com/iliyamo/fyyur-trivia/internal/handler"
	"github.com/iliyamo/fyyur-trivia/internal/model"
	"github.com/iliyamo/fyyur-trivia/internal/queue"
	"github.com/iliyamo/fyyur-trivia/internal/router"
	"github.com/iliyamo/fyyur-trivia/internal/testutil"
)

func (a triviaApp) category(t *testing.T, typ string) *model.Category {
	t.Helper()
	c := &model.Category{Type: typ}
	require.NoError(t, a.categories.Create(context.Background(), c))
	return c
}

func (a triviaApp) question(t *testing.T, text string, cat *model.Category) *model.Question {
	t.Helper()
	q := &model.Question{Question: text, Answer: "answer", Category: cat.ID, Difficulty: 3}
	require.NoError(t, a.questions.Create(context.Background(), q))
	return q
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
	body := decode[handler.ErrorResponse](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, code, body.Error)
	assert.Equal(t, message, body.Message)
}

func TestListCategories(t *testing.T) {
	a := newTriviaApp(t)
	assertError(t, get(a.e, "/categories"), http.StatusNotFound, "Resource not found")

	sci := a.category(t, "Science")
	art := a.category(t, "Art")

	rec := get(a.e, "/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{
		fmt.Sprint(sci.ID): "Science",
		fmt.Sprint(art.ID): "Art",
	}, body["categories"])
}

func TestCreateCategory(t *testing.T) {
	a := newTriviaApp(t)
	rec := sendJSON(a.e, http.MethodPost, "/categories", `{"type":"History"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[handler.CategoryResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "History", body.Category.Type)
	assert.NotZero(t, body.Category.ID)

	assertError(t, sendJSON(a.e, http.MethodPost, "/categories", `{}`), http.StatusUnprocessableEntity, "Resource cannot be processed")
	assertError(t, sendJSON(a.e, http.MethodPost, "/categories", `{"type":`), http.StatusBadRequest, "Bad request")
}

func TestListQuestionsPaginates(t *testing.T) {
	a := newTriviaApp(t)
	c := a.category(t, "Science")
	for i := 0; i < 12; i++ {
		a.question(t, fmt.Sprintf("question %d", i), c)
	}

	rec := get(a.e, "/questions?page=1")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[handler.QuestionPageResponse](t, rec)
	assert.True(t, page.Success)
	assert.Len(t, page.Questions, handler.QuestionsPerPage)
	assert.EqualValues(t, 12, page.TotalQuestions)
	assert.Equal(t, map[uint64]string{c.ID: "Science"}, page.Categories)
	assert.Equal(t, "", page.CurrentCategory)

	page = decode[handler.QuestionPageResponse](t, get(a.e, "/questions?page=2"))
	assert.Len(t, page.Questions, 2)

	assertError(t, get(a.e, "/questions?page=3"), http.StatusNotFound, "Resource not found")
	for _, p := range []string{"922337203685477581", "922337203685477582", "1844674407370955162", "99999999999999999999"} {
		assertError(t, get(a.e, "/questions?page="+p), http.StatusNotFound, "Resource not found")
	}

	for _, p := range []string{"", "?page=abc", "?page=0", "?page=-4", "?page=-99999999999999999999"} {
		rec := get(a.e, "/questions"+p)
		require.Equal(t, http.StatusOK, rec.Code, p)
		assert.Len(t, decode[handler.QuestionPageResponse](t, rec).Questions, handler.QuestionsPerPage, p)
	}
	assert.Zero(t, testutil.InUse(t, a.db))
}

func TestCreateQuestion(t *testing.T) {
	a := newTriviaApp(t)
	c := a.category(t, "Science")

	rec := sendJSON(a.e, http.MethodPost, "/questions",
		fmt.Sprintf(`{"question":"What is H2O?","answer":"Water","difficulty":"2","category":"%d"}`, c.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[handler.QuestionResponse](t, rec)
	require.NotNil(t, body.Question)
	assert.Equal(t, c.ID, body.Question.Category)
	assert.Equal(t, 2, body.Question.Difficulty)
	assert.Zero(t, body.Question.NoOfRatings)

	cases := map[string]string{
		"unknown category": `{"question":"q","answer":"a","difficulty":1,"category":999}`,
		"missing answer":   fmt.Sprintf(`{"question":"q","difficulty":1,"category":%d}`, c.ID),
		"difficulty high":  fmt.Sprintf(`{"question":"q","answer":"a","difficulty":6,"category":%d}`, c.ID),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assertError(t, sendJSON(a.e, http.MethodPost, "/questions", payload), http.StatusUnprocessableEntity, "Resource cannot be processed")
		})
	}
	assert.EqualValues(t, 1, count(t, a.db, "questions"))
	assert.Zero(t, testutil.InUse(t, a.db))
}

func TestDeleteQuestion(t *testing.T) {
	a := newTriviaApp(t)
	q := a.question(t, "doomed", a.category(t, "Science"))

	rec := sendJSON(a.e, http.MethodDelete, fmt.Sprintf("/questions/%d", q.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Zero(t, count(t, a.db, "questions"))

	assertError(t, sendJSON(a.e, http.MethodDelete, fmt.Sprintf("/questions/%d", q.ID), ""), http.StatusNotFound, "Resource not found")
	assertError(t, sendJSON(a.e, http.MethodDelete, "/questions/abc", ""), http.StatusBadRequest, "Bad request")
}

func TestRateQuestionRunningMean(t *testing.T) {
	a := newTriviaApp(t)
	q := a.question(t, "rate me", a.category(t, "Art"))
	path := fmt.Sprintf("/questions/%d", q.ID)

	rec := sendJSON(a.e, http.MethodPatch, path, `{"new_rating":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[handler.QuestionResponse](t, rec).Question
	assert.Equal(t, 1, got.NoOfRatings)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)

	got = decode[handler.QuestionResponse](t, sendJSON(a.e, http.MethodPatch, path, `{"new_rating":2}`)).Question
	assert.Equal(t, 2, got.NoOfRatings)
	assert.Equal(t, 6, got.TotalRatings)
	assert.InDelta(t, 3.0, got.Rating, 1e-9)

	assertError(t, sendJSON(a.e, http.MethodPatch, path, `{"new_rating":6}`), http.StatusUnprocessableEntity, "Resource cannot be processed")
	assertError(t, sendJSON(a.e, http.MethodPatch, path, `{"new_rating":0}`), http.StatusUnprocessableEntity, "Resource cannot be processed")
	assertError(t, sendJSON(a.e, http.MethodPatch, path, `not json`), http.StatusBadRequest, "Bad request")
	assertError(t, sendJSON(a.e, http.MethodPatch, "/questions/999", `{"new_rating":3}`), http.StatusNotFound, "Resource not found")
}

func TestSearchQuestions(t *testing.T) {
	a := newTriviaApp(t)
	c := a.category(t, "History")
	a.question(t, "Whose autobiography is entitled 'I Know Why the Caged Bird Sings'?", c)
	a.question(t, "What boxer's original name is Cassius Clay?", c)

	rec := sendJSON(a.e, http.MethodPost, "/questions/search", `{"searchTerm":"TITLE"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[handler.SearchResponse](t, rec)
	assert.Equal(t, 1, body.TotalQuestions)
	assert.Len(t, body.Questions, 1)
	assert.Equal(t, "TITLE", body.SearchTerm)
	assert.Equal(t, "", body.CurrentCategory)

	assertError(t, sendJSON(a.e, http.MethodPost, "/questions/search", `{"searchTerm":"zebra"}`), http.StatusNotFound, "Resource not found")
	assertError(t, sendJSON(a.e, http.MethodPost, "/questions/search", `{}`), http.StatusUnprocessableEntity, "Resource cannot be processed")
}

func TestCategoryQuestions(t *testing.T) {
	a := newTriviaApp(t)
	sci := a.category(t, "Science")
	art := a.category(t, "Art")
	a.question(t, "one", sci)
	a.question(t, "two", sci)
	a.question(t, "three", art)

	rec := get(a.e, fmt.Sprintf("/categories/%d/questions", sci.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[handler.CategoryQuestionsResponse](t, rec)
	assert.Equal(t, 2, body.TotalQuestions)
	assert.Equal(t, sci.ID, body.CurrentCategory)
	for _, q := range body.Questions {
		assert.Equal(t, sci.ID, q.Category)
	}

	empty := a.category(t, "Sports")
	rec = get(a.e, fmt.Sprintf("/categories/%d/questions", empty.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[handler.CategoryQuestionsResponse](t, rec).Questions)

	assertError(t, get(a.e, "/categories/999/questions"), http.StatusNotFound, "Resource not found")
	assertError(t, get(a.e, "/categories/x/questions"), http.StatusBadRequest, "Bad request")
}

func TestQuizExcludesPreviousQuestions(t *testing.T) {
	a := newTriviaApp(t)
	sci := a.category(t, "Science")
	art := a.category(t, "Art")
	q1 := a.question(t, "one", sci)
	q2 := a.question(t, "two", sci)
	a.question(t, "three", art)

	seen := []uint64{q1.ID}
	rec := sendJSON(a.e, http.MethodPost, "/quizzes",
		fmt.Sprintf(`{"quiz_category":{"type":"Science","id":"%d"},"previous_questions":[%d]}`, sci.ID, q1.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[handler.QuestionResponse](t, rec)
	require.True(t, body.Success)
	assert.Equal(t, q2.ID, body.Question.ID)
	seen = append(seen, body.Question.ID)

	rec = sendJSON(a.e, http.MethodPost, "/quizzes",
		fmt.Sprintf(`{"quiz_category":{"type":"Science","id":%d},"previous_questions":[%d,%d]}`, sci.ID, seen[0], seen[1]))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())

	// all categories: only the art question is left
	for _, payload := range []string{
		fmt.Sprintf(`{"quiz_category":null,"previous_questions":[%d,%d]}`, seen[0], seen[1]),
		fmt.Sprintf(`{"quiz_category":{"type":"click","id":0},"previous_questions":[%d,%d]}`, seen[0], seen[1]),
		fmt.Sprintf(`{"previous_questions":[%d,%d]}`, seen[0], seen[1]),
	} {
		body := decode[handler.QuestionResponse](t, sendJSON(a.e, http.MethodPost, "/quizzes", payload))
		require.True(t, body.Success, payload)
		assert.Equal(t, "three", body.Question.Question, payload)
	}

	assertError(t, sendJSON(a.e, http.MethodPost, "/quizzes", `{"previous_questions":"x"}`), http.StatusBadRequest, "Bad request")
}

func TestPlayers(t *testing.T) {
	a := newTriviaApp(t)

	first := decode[handler.PlayerResponse](t, sendJSON(a.e, http.MethodPost, "/players", `{"player_name":"ada"}`))
	second := decode[handler.PlayerResponse](t, sendJSON(a.e, http.MethodPost, "/players", `{"player_name":"ada"}`))
	require.True(t, first.Success)
	assert.Equal(t, first.Player.ID, second.Player.ID)
	assert.EqualValues(t, 1, count(t, a.db, "players"))

	assertError(t, sendJSON(a.e, http.MethodPost, "/players", `{"player_name":""}`), http.StatusUnprocessableEntity, "Resource cannot be processed")
	assertError(t, sendJSON(a.e, http.MethodPost, "/players", `{"player_name":"this name is far too long to fit"}`), http.StatusUnprocessableEntity, "Resource cannot be processed")

	id := first.Player.ID
	rec := sendJSON(a.e, http.MethodPatch, "/players", fmt.Sprintf(`{"player":{"id":%d},"score_played":3}`, id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = sendJSON(a.e, http.MethodPatch, "/players", fmt.Sprintf(`{"player":{"id":"%d","player_name":"ada"},"score_played":"0"}`, id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[handler.PlayerResponse](t, rec).Player
	assert.Equal(t, 2, p.GamesPlayed)
	assert.Equal(t, 3, p.TotalScore)

	events := a.events.all()
	require.Len(t, events, 2)
	ev, ok := events[1].(queue.GamePlayedEvent)
	require.True(t, ok)
	assert.Equal(t, "ada", ev.PlayerName)
	assert.Equal(t, 2, ev.GamesPlayed)
	assert.Equal(t, fixedNow, ev.PlayedAt)

	assertError(t, sendJSON(a.e, http.MethodPatch, "/players", `{"player":{"id":999},"score_played":1}`), http.StatusNotFound, "Resource not found")
	assertError(t, sendJSON(a.e, http.MethodPatch, "/players", fmt.Sprintf(`{"player":{"id":%d},"score_played":-1}`, id)), http.StatusUnprocessableEntity, "Resource cannot be processed")
	assertError(t, sendJSON(a.e, http.MethodPatch, "/players", `{"score_played":1}`), http.StatusUnprocessableEntity, "Resource cannot be processed")
	assert.Len(t, a.events.all(), 2)
	assert.Zero(t, testutil.InUse(t, a.db))
}

func TestTriviaMethodNotAllowed(t *testing.T) {
	a := newTriviaApp(t)
	assertError(t, sendJSON(a.e, http.MethodPut, "/categories", `{}`), http.StatusMethodNotAllowed, "Method not allowed")
	assertError(t, get(a.e, "/nothing/here"), http.StatusNotFound, "Resource not found")
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestTriviaRateLimit(t *testing.T) {
	_, rdb := newRedis(t)
	a := newTriviaAppWith(t, router.Trivia{
		Redis: rdb,
		RateLimit: config.RateLimitConfig{
			Enabled:        true,
			Capacity:       2,
			RefillTokens:   1,
			RefillInterval: time.Hour,
			TTL:            time.Hour,
			KeyStrategy:    "ip",
			Prefix:         "rl",
		},
	})
	a.category(t, "Science")

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, get(a.e, "/categories").Code)
	}
	rec := get(a.e, "/categories")
	assertError(t, rec, http.StatusTooManyRequests, "Too many requests")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// operational endpoints are not limited
	assert.Equal(t, http.StatusOK, get(a.e, "/healthz").Code)
}

func TestTriviaCacheInvalidatedByWrites(t *testing.T) {
	_, rdb := newRedis(t)
	a := newTriviaAppWith(t, router.Trivia{
		Redis: rdb,
		Cache: config.CacheConfig{
			Enabled:           true,
			Methods:           map[string]bool{http.MethodGet: true},
			TTL:               time.Minute,
			KeyStrategy:       "route_query",
			Prefix:            "cache",
			MaxBodyBytes:      1 << 20,
			InvalidateOnWrite: true,
		},
	})
	a.category(t, "Science")

	first := get(a.e, "/categories")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(a.e, "/categories")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	require.Equal(t, http.StatusOK, sendJSON(a.e, http.MethodPost, "/categories", `{"type":"Art"}`).Code)

	third := get(a.e, "/categories")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Contains(t, third.Body.String(), "Art")
}
