package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scoutline/scoutline/internal/trail"
)

// RegisterRoutes mounts the matching API routes.
func RegisterRoutes(r chi.Router, orch *Orchestrator, trailStore *trail.Store) {
	r.Route("/api/match", func(r chi.Router) {
		r.Post("/query", handleMatchQuery(orch))
		r.Get("/queries", handleListQueries(trailStore))
		r.Get("/queries/{id}", handleGetQuery(trailStore))
	})
}

func handleMatchQuery(orch *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		resp, err := orch.ProcessQuery(r.Context(), body.Query)
		if err != nil {
			if errors.Is(err, ErrEmptyQuery) {
				http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleListQueries(trailStore *trail.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		queries, err := trailStore.ListQueries(r.Context(), limit)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if queries == nil {
			queries = []trail.QueryRecord{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(queries)
	}
}

// handleGetQuery returns one query record together with its task record and
// full conversation trail.
func handleGetQuery(trailStore *trail.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		q, err := trailStore.GetQuery(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if q == nil {
			http.Error(w, `{"error":"query not found"}`, http.StatusNotFound)
			return
		}

		task, err := trailStore.GetTaskForQuery(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		entries, err := trailStore.Entries(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []trail.Entry{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"query":        q,
			"task":         task,
			"conversation": entries,
		})
	}
}
