package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/internal/validation"
	"github.com/example/wordapi/pkg/models"
)

const wordNotFound = "Word not found"

func (s *Server) listWords(w http.ResponseWriter, r *http.Request) {
	words, err := s.words.GetAll(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if words == nil {
		words = []models.Word{}
	}
	respondJSON(w, http.StatusOK, words)
}

func (s *Server) getWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_word")
	if err != nil {
		respondMessage(w, http.StatusNotFound, wordNotFound)
		return
	}
	word, err := s.words.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, wordNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, word)
}

func (s *Server) createWord(w http.ResponseWriter, r *http.Request) {
	var input validation.WordInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	// Word names are stored lower-case so lookups are case-insensitive.
	input.Name = strings.ToLower(input.Name)

	knownTags, err := s.tags.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateWord(input, knownTags); errs.Any() {
		respondValidation(w, errs)
		return
	}

	word := &models.Word{Name: input.Name, Translation: input.Translation, Annotation: input.Annotation}
	if err := s.words.Create(r.Context(), word, input.Tags); err != nil {
		respondError(w, s.logger, err)
		return
	}
	created, err := s.words.GetByID(r.Context(), word.ID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) updateWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_word")
	if err != nil {
		respondMessage(w, http.StatusNotFound, wordNotFound)
		return
	}
	existing, err := s.words.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, wordNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	var input validation.WordInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	input.Name = strings.ToLower(input.Name)

	knownTags, err := s.tags.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateWord(input, knownTags); errs.Any() {
		respondValidation(w, errs)
		return
	}

	existing.Name = input.Name
	existing.Translation = input.Translation
	existing.Annotation = input.Annotation
	if err := s.words.Update(r.Context(), existing, input.Tags); err != nil {
		respondError(w, s.logger, err)
		return
	}
	updated, err := s.words.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_word")
	if err != nil {
		respondMessage(w, http.StatusNotFound, wordNotFound)
		return
	}
	if _, err := s.words.GetByID(r.Context(), id); errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, wordNotFound)
		return
	} else if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if err := s.words.Delete(r.Context(), id); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
