package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Number is an integer that also accepts a quoted numeral in JSON, which is
// what browser select boxes submit.
type Number int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*n = Number(v)
	return nil
}

// NewCategory is the body of POST /categories.
type NewCategory struct {
	Type string `json:"type" validate:"required,max=120"`
}

// NewQuestion is the body of POST /questions.
type NewQuestion struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty Number `json:"difficulty" validate:"required,min=1,max=5"`
	Category   Number `json:"category" validate:"required,min=1"`
}

// Rating is the body of PATCH /questions/:id.
type Rating struct {
	NewRating Number `json:"new_rating" validate:"required,min=1,max=5"`
}

// Search is the body of POST /questions/search.
type Search struct {
	SearchTerm *string `json:"searchTerm" validate:"required"`
}

// NewPlayer is the body of POST /players.
type NewPlayer struct {
	PlayerName string `json:"player_name" validate:"required,max=25"`
}

// PlayerRef identifies a player inside a score update.
type PlayerRef struct {
	ID Number `json:"id" validate:"required,min=1"`
}

// Score is the body of PATCH /players.
type Score struct {
	Player      *PlayerRef `json:"player" validate:"required"`
	ScorePlayed *Number    `json:"score_played" validate:"required,min=0"`
}

// QuizCategory is the optional category filter of a quiz round.
type QuizCategory struct {
	Type string `json:"type"`
	ID   Number `json:"id" validate:"min=0"`
}

// Quiz is the body of POST /quizzes.
type Quiz struct {
	QuizCategory      *QuizCategory `json:"quiz_category"`
	PreviousQuestions []Number      `json:"previous_questions" validate:"dive,min=1"`
}

// CategoryID is 0 when every category is in play.
func (q Quiz) CategoryID() uint64 {
	if q.QuizCategory == nil || q.QuizCategory.ID <= 0 {
		return 0
	}
	return uint64(q.QuizCategory.ID)
}

// Exclude returns the ids already asked.
func (q Quiz) Exclude() []uint64 {
	out := make([]uint64, 0, len(q.PreviousQuestions))
	for _, id := range q.PreviousQuestions {
		out = append(out, uint64(id))
	}
	return out
}
