package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/internal/validation"
	"github.com/example/wordapi/pkg/models"
)

const setNotFound = "Set Words not found"

func (s *Server) listSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.sets.GetAll(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if sets == nil {
		sets = []models.Set{}
	}
	respondJSON(w, http.StatusOK, sets)
}

func (s *Server) getSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_set")
	if err != nil {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	}
	set, err := s.sets.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, set)
}

func (s *Server) wordsBySet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_set")
	if err != nil {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	}
	if _, err := s.sets.GetByID(r.Context(), id); errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	} else if err != nil {
		respondError(w, s.logger, err)
		return
	}
	words, err := s.sets.WordsBySetID(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if words == nil {
		words = []models.Word{}
	}
	respondJSON(w, http.StatusOK, words)
}

func (s *Server) createSet(w http.ResponseWriter, r *http.Request) {
	var input validation.SetInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	input.Name = strings.ToLower(input.Name)

	nameTaken, ok := s.setNameTaken(w, r, input.Name, 0)
	if !ok {
		return
	}
	knownWords, err := s.words.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateSet(input, knownWords, nameTaken); errs.Any() {
		respondValidation(w, errs)
		return
	}

	set := &models.Set{Name: input.Name}
	if err := s.sets.Create(r.Context(), set, input.Words); err != nil {
		respondError(w, s.logger, err)
		return
	}
	created, err := s.sets.GetByID(r.Context(), set.ID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) updateSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_set")
	if err != nil {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	}
	existing, err := s.sets.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	var input validation.SetInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	input.Name = strings.ToLower(input.Name)

	nameTaken, ok := s.setNameTaken(w, r, input.Name, existing.ID)
	if !ok {
		return
	}
	knownWords, err := s.words.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateSet(input, knownWords, nameTaken); errs.Any() {
		respondValidation(w, errs)
		return
	}

	existing.Name = input.Name
	if err := s.sets.Update(r.Context(), existing, input.Words); err != nil {
		respondError(w, s.logger, err)
		return
	}
	updated, err := s.sets.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_set")
	if err != nil {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	}
	if _, err := s.sets.GetByID(r.Context(), id); errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, setNotFound)
		return
	} else if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if err := s.sets.Delete(r.Context(), id); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setNameTaken reports whether name belongs to a set other than excludeID.
// A false second return means an error response was already written.
func (s *Server) setNameTaken(w http.ResponseWriter, r *http.Request, name string, excludeID int64) (bool, bool) {
	if name == "" {
		return false, true
	}
	found, err := s.sets.GetByName(r.Context(), name)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return false, true
	case err != nil:
		respondError(w, s.logger, err)
		return false, false
	}
	return found.ID != excludeID, true
}
