package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/store"
)

// ErrNoSession is returned by ActiveSession when no quiz is in flight.
var ErrNoSession = errors.New("no active session")

// ActiveSession holds the one session in flight plus the identity of the
// document it was built from. The engine itself is single-threaded; the
// mutex serializes concurrent handler access to it.
type ActiveSession struct {
	mu       sync.Mutex
	docID    string
	docTitle string
	sess     *quiz.Session
}

func NewActiveSession() *ActiveSession { return &ActiveSession{} }

func (a *ActiveSession) Start(docID, docTitle string, s *quiz.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docID, a.docTitle, a.sess = docID, docTitle, s
}

// With runs fn against the current session under the lock. Abandoning a
// session is just starting another one; there is nothing to clean up.
func (a *ActiveSession) With(fn func(docID, docTitle string, s *quiz.Session) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return ErrNoSession
	}
	return fn(a.docID, a.docTitle, a.sess)
}

// questionView is a Question as served to the client: no answer index, and
// the explanation only once the client has toggled it open.
type questionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type sessionView struct {
	DocID           string       `json:"doc_id"`
	DocTitle        string       `json:"doc_title"`
	Position        int          `json:"position"` // 1-based
	Total           int          `json:"total"`
	Question        questionView `json:"question"`
	Chosen          int          `json:"chosen"` // -1 when blank
	ExplanationOpen bool         `json:"explanation_open"`
	Explanation     string       `json:"explanation,omitempty"`
	Score           quiz.Score   `json:"score"`
	StartedAt       int64        `json:"started_at"`
}

func viewOf(docID, docTitle string, s *quiz.Session) sessionView {
	q := s.Items[s.Current]
	v := sessionView{
		DocID:           docID,
		DocTitle:        docTitle,
		Position:        s.Current + 1,
		Total:           len(s.Items),
		Question:        questionView{ID: q.ID, Question: q.Prompt, Options: q.Options},
		Chosen:          s.Answers[s.Current],
		ExplanationOpen: s.ExplanationOpen[s.Current],
		Score:           s.Score(),
		StartedAt:       s.StartedAt,
	}
	if v.ExplanationOpen {
		v.Explanation = q.Explanation
	}
	return v
}

func writeView(w http.ResponseWriter, docID, docTitle string, s *quiz.Session) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(viewOf(docID, docTitle, s))
}

// POST /sessions  { "doc_id": "...", "count": 10 }
// count is clamped to [1, pool size] by the engine; a malformed document is
// a 422, no partial session is kept.
func StartSessionHandler(st store.Store, active *ActiveSession) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DocID string `json:"doc_id"`
			Count int    `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.DocID == "" {
			http.Error(w, "doc_id required", 400)
			return
		}
		d, err := st.GetDoc(r.Context(), req.DocID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		s, err := quiz.BuildFromJSON(d.Data, req.Count)
		if err != nil {
			if quiz.IsValidation(err) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		active.Start(d.ID, d.Title, s)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(viewOf(d.ID, d.Title, s))
	}
}

// GET /sessions/current
func CurrentSessionHandler(active *ActiveSession) http.HandlerFunc {
	return withSession(active, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) error {
		return nil
	})
}

// POST /sessions/current/answer  { "option_index": 2 }
func AnswerHandler(active *ActiveSession) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OptionIndex int `json:"option_index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		err := active.With(func(docID, docTitle string, s *quiz.Session) error {
			if err := s.Answer(req.OptionIndex); err != nil {
				return err
			}
			writeView(w, docID, docTitle, s)
			return nil
		})
		writeSessionErr(w, err)
	}
}

// POST /sessions/current/next
func NextHandler(active *ActiveSession) http.HandlerFunc {
	return withSession(active, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) error {
		s.Next()
		return nil
	})
}

// POST /sessions/current/prev
func PrevHandler(active *ActiveSession) http.HandlerFunc {
	return withSession(active, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) error {
		s.Prev()
		return nil
	})
}

// POST /sessions/current/toggle-explanation
func ToggleExplanationHandler(active *ActiveSession) http.HandlerFunc {
	return withSession(active, func(w http.ResponseWriter, r *http.Request, s *quiz.Session) error {
		s.ToggleExplanation()
		return nil
	})
}

// GET /sessions/current/score
func ScoreHandler(active *ActiveSession) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := active.With(func(docID, docTitle string, s *quiz.Session) error {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(s.Score())
			return nil
		})
		writeSessionErr(w, err)
	}
}

// POST /sessions/current/finish — appends the result to history. The session
// stays open afterwards so answers can still be reviewed.
func FinishSessionHandler(st store.Store, active *ActiveSession) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := active.With(func(docID, docTitle string, s *quiz.Session) error {
			sc := s.Score()
			res := store.Result{
				DocID:      docID,
				DocTitle:   docTitle,
				OK:         sc.OK,
				Bad:        sc.Bad,
				Blank:      sc.Blank,
				Total:      sc.Total,
				StartedAt:  s.StartedAt,
				FinishedAt: time.Now().Unix(),
			}
			if err := st.AddResult(r.Context(), res); err != nil {
				return err
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(struct {
				store.Result
				Pct int `json:"pct"`
			}{res, percentage(sc)})
			return nil
		})
		writeSessionErr(w, err)
	}
}

func percentage(sc quiz.Score) int {
	if sc.Total == 0 {
		return 0
	}
	return int(math.Round(float64(sc.OK) / float64(sc.Total) * 100))
}

// withSession wraps a mutate-then-render handler: run op under the session
// lock, then respond with the refreshed view unless op already wrote.
func withSession(active *ActiveSession, op func(http.ResponseWriter, *http.Request, *quiz.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := active.With(func(docID, docTitle string, s *quiz.Session) error {
			if err := op(w, r, s); err != nil {
				return err
			}
			writeView(w, docID, docTitle, s)
			return nil
		})
		writeSessionErr(w, err)
	}
}

func writeSessionErr(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrNoSession):
		http.Error(w, err.Error(), 404)
	case quiz.IsValidation(err):
		http.Error(w, err.Error(), 400)
	default:
		http.Error(w, err.Error(), 500)
	}
}
