package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/calcschnell/internal/calc"
	"github.com/codefionn/calcschnell/internal/consts"
	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/session"
)

type problem struct {
	Error string `json:"error"`
}

type evalRequest struct {
	Expression string `json:"expression"`
}

type evalErrorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Char     string `json:"char,omitempty"`
	Position int    `json:"position"`
}

type evalResponse struct {
	Expression string         `json:"expression"`
	Result     string         `json:"result,omitempty"`
	Error      *evalErrorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(openAPIDocument)
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, problem{Error: "invalid JSON body"})
		return
	}

	sess := session.NewSession(history.SourceAPI, s.recorder())
	outcome := sess.Evaluate(r.Context(), req.Expression)

	resp := evalResponse{Expression: req.Expression}
	if outcome.Err == nil {
		resp.Result = outcome.Result
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Error = newEvalErrorBody(outcome.Err)
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func newEvalErrorBody(err error) *evalErrorBody {
	body := &evalErrorBody{Message: calc.Message(err)}

	var evalErr *calc.EvalError
	if errors.As(err, &evalErr) {
		body.Kind = evalErr.Kind.String()
		body.Position = evalErr.Pos
		if evalErr.Kind == calc.UnexpectedCharacter {
			body.Char = string(evalErr.Char)
		}
	}
	return body
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := consts.DefaultHistoryPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, problem{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries := []history.Entry{}
	if s.store != nil {
		recent, err := s.store.Recent(r.Context(), limit)
		if err != nil {
			s.log.Error("failed to list history: %v", err)
			writeJSON(w, http.StatusInternalServerError, problem{Error: "failed to read history"})
			return
		}
		if recent != nil {
			entries = recent
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var deleted int64
	if s.store != nil {
		n, err := s.store.Clear(r.Context())
		if err != nil {
			s.log.Error("failed to clear history: %v", err)
			writeJSON(w, http.StatusInternalServerError, problem{Error: "failed to clear history"})
			return
		}
		deleted = n
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
