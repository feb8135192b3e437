package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur-trivia/internal/form"
	"github.com/iliyamo/fyyur-trivia/internal/model"
	"github.com/iliyamo/fyyur-trivia/internal/queue"
	"github.com/iliyamo/fyyur-trivia/internal/repository"
	"github.com/iliyamo/fyyur-trivia/internal/service"
)

// QuestionsPerPage is the page size of GET /questions.
const QuestionsPerPage = 10

// TriviaHandler serves the quiz API.
type TriviaHandler struct {
	Categories *repository.CategoryRepo
	Questions  *repository.QuestionRepo
	Players    *repository.PlayerRepo
	Events     service.Publisher
	Now        func() time.Time
}

// NewTriviaHandler constructs a TriviaHandler and panics if any repository is nil.
func NewTriviaHandler(categories *repository.CategoryRepo, questions *repository.QuestionRepo, players *repository.PlayerRepo, events service.Publisher) *TriviaHandler {
	if categories == nil || questions == nil || players == nil {
		panic("nil repository passed to NewTriviaHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &TriviaHandler{Categories: categories, Questions: questions, Players: players, Events: events, Now: time.Now}
}

// Response bodies.  Categories are keyed by id; encoding/json writes the
// keys as strings.
type (
	CategoriesResponse struct {
		Success    bool              `json:"success"`
		Categories map[uint64]string `json:"categories"`
	}
	CategoryResponse struct {
		Success  bool           `json:"success"`
		Category model.Category `json:"category"`
	}
	QuestionPageResponse struct {
		Success         bool              `json:"success"`
		Questions       []model.Question  `json:"questions"`
		TotalQuestions  int64             `json:"total_questions"`
		Categories      map[uint64]string `json:"categories"`
		CurrentCategory string            `json:"current_category"`
	}
	SearchResponse struct {
		Success         bool             `json:"success"`
		Questions       []model.Question `json:"questions"`
		TotalQuestions  int              `json:"total_questions"`
		SearchTerm      string           `json:"search_term"`
		CurrentCategory string           `json:"current_category"`
	}
	CategoryQuestionsResponse struct {
		Success         bool             `json:"success"`
		Questions       []model.Question `json:"questions"`
		TotalQuestions  int              `json:"total_questions"`
		CurrentCategory uint64           `json:"current_category"`
	}
	QuestionResponse struct {
		Success  bool            `json:"success"`
		Question *model.Question `json:"question,omitempty"`
	}
	PlayerResponse struct {
		Success bool          `json:"success"`
		Player  *model.Player `json:"player"`
	}
	SuccessResponse struct {
		Success bool `json:"success"`
	}
)

// ListCategories handles GET /categories.  No categories at all is a 404.
func (h *TriviaHandler) ListCategories(c echo.Context) error {
	cats, err := h.categoryMap(c)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, CategoriesResponse{Success: true, Categories: cats})
}

// CreateCategory handles POST /categories.
func (h *TriviaHandler) CreateCategory(c echo.Context) error {
	var body form.NewCategory
	if err := bindBody(c, &body); err != nil {
		return err
	}
	cat := model.Category{Type: body.Type}
	if err := h.Categories.Create(c.Request().Context(), &cat); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CategoryResponse{Success: true, Category: cat})
}

// ListQuestions handles GET /questions?page=N.  Pages hold
// QuestionsPerPage questions; a missing, malformed or non-positive page is
// page 1.  An empty page, including one whose number overflows, is a 404.
func (h *TriviaHandler) ListQuestions(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(c.QueryParam("page"), "-"):
		return echo.ErrNotFound
	case err != nil || page < 1:
		page = 1
	}
	questions, total, err := h.Questions.Page(c.Request().Context(), page, QuestionsPerPage)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return echo.ErrNotFound
	}
	cats, err := h.categoryMap(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuestionPageResponse{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  total,
		Categories:      cats,
		CurrentCategory: "",
	})
}

// CreateQuestion handles POST /questions.  An unknown category is a 422.
func (h *TriviaHandler) CreateQuestion(c echo.Context) error {
	var body form.NewQuestion
	if err := bindBody(c, &body); err != nil {
		return err
	}
	q := model.Question{
		Question:   body.Question,
		Answer:     body.Answer,
		Category:   uint64(body.Category),
		Difficulty: int(body.Difficulty),
	}
	err := h.Questions.Create(c.Request().Context(), &q)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return echo.ErrUnprocessableEntity
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuestionResponse{Success: true, Question: &q})
}

// DeleteQuestion handles DELETE /questions/:id.
func (h *TriviaHandler) DeleteQuestion(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	err = h.Questions.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrQuestionNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// RateQuestion handles PATCH /questions/:id with {"new_rating": 1..5}.
func (h *TriviaHandler) RateQuestion(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body form.Rating
	if err := bindBody(c, &body); err != nil {
		return err
	}
	q, err := h.Questions.Rate(c.Request().Context(), id, int(body.NewRating))
	if errors.Is(err, repository.ErrQuestionNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuestionResponse{Success: true, Question: q})
}

// SearchQuestions handles POST /questions/search.  No match is a 404.
func (h *TriviaHandler) SearchQuestions(c echo.Context) error {
	var body form.Search
	if err := bindBody(c, &body); err != nil {
		return err
	}
	term := *body.SearchTerm
	questions, err := h.Questions.Search(c.Request().Context(), term)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, SearchResponse{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  len(questions),
		SearchTerm:      term,
		CurrentCategory: "",
	})
}

// CategoryQuestions handles GET /categories/:id/questions.  An unknown
// category is a 404; a known one may have no questions.
func (h *TriviaHandler) CategoryQuestions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	cat, err := h.Categories.Get(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	questions, err := h.Questions.ByCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return c.JSON(http.StatusOK, CategoryQuestionsResponse{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  len(questions),
		CurrentCategory: cat.ID,
	})
}

// NextQuizQuestion handles POST /quizzes.  It returns a random question not
// in previous_questions, optionally limited to one category, or
// {"success": false} once the pool is exhausted.
func (h *TriviaHandler) NextQuizQuestion(c echo.Context) error {
	var body form.Quiz
	if err := bindBody(c, &body); err != nil {
		return err
	}
	q, err := h.Questions.Next(c.Request().Context(), body.CategoryID(), body.Exclude())
	if errors.Is(err, repository.ErrNoQuestionsLeft) {
		return c.JSON(http.StatusOK, QuestionResponse{Success: false})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuestionResponse{Success: true, Question: q})
}

// GetOrCreatePlayer handles POST /players.  Posting the same name twice
// returns the same player.
func (h *TriviaHandler) GetOrCreatePlayer(c echo.Context) error {
	var body form.NewPlayer
	if err := bindBody(c, &body); err != nil {
		return err
	}
	p, err := h.Players.GetOrCreate(c.Request().Context(), body.PlayerName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PlayerResponse{Success: true, Player: p})
}

// RecordScore handles PATCH /players: one finished game for player.id
// worth score_played points.
func (h *TriviaHandler) RecordScore(c echo.Context) error {
	var body form.Score
	if err := bindBody(c, &body); err != nil {
		return err
	}
	score := int(*body.ScorePlayed)
	p, err := h.Players.RecordGame(c.Request().Context(), uint64(body.Player.ID), score)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	publish(h.Events, queue.GamePlayedEvent{
		EventID:     queue.NewEventID(),
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		Score:       score,
		GamesPlayed: p.GamesPlayed,
		TotalScore:  p.TotalScore,
		PlayedAt:    h.Now().UTC(),
	})
	return c.JSON(http.StatusOK, PlayerResponse{Success: true, Player: p})
}

func (h *TriviaHandler) categoryMap(c echo.Context) (map[uint64]string, error) {
	cats, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]string, len(cats))
	for _, cat := range cats {
		out[cat.ID] = cat.Type
	}
	return out, nil
}

// pathID parses the :id path parameter; anything but a positive integer is
// a 400.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// bindBody decodes a JSON body (400 when unreadable) and validates it (422
// when unacceptable).
func bindBody(c echo.Context, body any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body").SetInternal(err)
	}
	if err := c.Validate(body); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, form.Problems(err)).SetInternal(err)
	}
	return nil
}
