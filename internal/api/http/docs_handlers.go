package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/quizdesk/quizdesk/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// POST /docs — body is the raw question-bank JSON; ?source= labels provenance
// (file name, "pasted", ...). The payload is stored opaquely; it is only
// validated when a session is built from it.
func ImportDocHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
		if err != nil {
			http.Error(w, "read body", 400)
			return
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "bad json: "+err.Error(), 400)
			return
		}
		source := r.URL.Query().Get("source")
		if source == "" {
			source = "imported"
		}
		now := time.Now().Unix()
		d := store.Doc{
			ID:        "json_" + uuid.NewString(),
			Title:     inferTitle(payload),
			Source:    source,
			Data:      body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.PutDoc(r.Context(), d); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(d)
	}
}

// GET /docs
func ListDocsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.ListDocs(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /docs/{docID}
func GetDocHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := st.GetDoc(r.Context(), chi.URLParam(r, "docID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(d)
	}
}

// PUT /docs/{docID} — save edits: replaces the payload, re-infers the title
// and bumps updated_at, keeping created_at and source.
func UpdateDocHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "docID")
		d, err := st.GetDoc(r.Context(), id)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
		if err != nil {
			http.Error(w, "read body", 400)
			return
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "bad json: "+err.Error(), 400)
			return
		}
		d.Data = body
		d.Title = inferTitle(payload)
		d.UpdatedAt = time.Now().Unix()
		if err := st.PutDoc(r.Context(), d); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(d)
	}
}

// DELETE /docs/{docID}
func DeleteDocHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteDoc(r.Context(), chi.URLParam(r, "docID")); err != nil {
			writeStoreErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /docs/{docID}/export — pretty-printed payload as a download.
func ExportDocHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := st.GetDoc(r.Context(), chi.URLParam(r, "docID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, d.Data, "", "  "); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", exportFilename(d.Title)))
		_, _ = w.Write(pretty.Bytes())
	}
}

// inferTitle guesses a display title from the payload without imposing a
// schema; the bank format in the wild uses several spellings.
func inferTitle(payload map[string]interface{}) string {
	for _, k := range []string{"titulo", "title", "nombre", "name"} {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	if t, ok := payload["tema"]; ok && t != nil {
		return fmt.Sprintf("Tema %v", t)
	}
	return "Untitled"
}

var unsafeFilename = regexp.MustCompile(`[\\/:*?"<>|]+`)

func exportFilename(title string) string {
	if title == "" {
		title = "json_export"
	}
	name := unsafeFilename.ReplaceAllString(title, "_")
	if runes := []rune(name); len(runes) > 80 {
		name = string(runes[:80])
	}
	return name + ".json"
}

func writeStoreErr(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), 404)
		return
	}
	http.Error(w, err.Error(), 500)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
