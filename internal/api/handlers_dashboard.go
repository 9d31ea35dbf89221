package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/wordapi/internal/auth"
	"github.com/example/wordapi/internal/validation"
	"github.com/example/wordapi/pkg/models"
)

// historicOut is the wire shape of one stored review event
type historicOut struct {
	IDWord int64 `json:"id_word"`
	Hit    bool  `json:"hit"`
}

func (s *Server) callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Missing Authorization Header")
		return 0, false
	}
	userID, err := claims.UserID()
	if err != nil {
		respondMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return 0, false
	}
	return userID, true
}

func (s *Server) createHistoric(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	var batch validation.HistoricBatch
	if errs := decodeJSON(r, &batch); errs != nil {
		respondValidation(w, errs)
		return
	}

	knownWords, err := s.words.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateHistoricBatch(batch.Historics, knownWords); errs.Any() {
		respondValidation(w, errs)
		return
	}

	events := make([]models.Historic, 0, len(batch.Historics))
	for _, input := range batch.Historics {
		events = append(events, models.Historic{WordID: *input.IDWord, Hit: *input.Hit})
	}

	created, err := s.historics.CreateBatch(r.Context(), events, userID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	out := make([]historicOut, 0, len(created))
	for _, event := range created {
		out = append(out, historicOut{IDWord: event.WordID, Hit: event.Hit})
	}
	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) totalHitsLast30Days(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	total, err := s.engine.Rolling30(r.Context(), userID, s.now())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, total)
}

func (s *Server) historicByDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		respondValidation(w, validation.FieldErrors{"date": "Not a valid date, expected YYYY-MM-DD."})
		return
	}
	counts, err := s.engine.ByDay(r.Context(), userID, date, s.now())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

func (s *Server) top10WrongWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	ranked, err := s.engine.Top10Missed(r.Context(), userID, s.now())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

func (s *Server) historic90Days(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	series, err := s.engine.Series90(r.Context(), userID, s.now())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}
