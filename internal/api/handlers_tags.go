package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/internal/validation"
	"github.com/example/wordapi/pkg/models"
)

const tagNotFound = "Tag not found"

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.GetAll(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_tag")
	if err != nil {
		respondMessage(w, http.StatusNotFound, tagNotFound)
		return
	}
	tag, err := s.tags.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, tagNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tag)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var input validation.TagInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	input.Name = strings.ToLower(input.Name)

	nameTaken := false
	if input.Name != "" {
		_, err := s.tags.GetByName(r.Context(), input.Name)
		switch {
		case err == nil:
			nameTaken = true
		case errors.Is(err, database.ErrNotFound):
		default:
			respondError(w, s.logger, err)
			return
		}
	}
	if errs := validation.ValidateTag(input, nameTaken); errs.Any() {
		respondValidation(w, errs)
		return
	}

	tag := &models.Tag{Name: input.Name}
	if err := s.tags.Create(r.Context(), tag); err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_tag")
	if err != nil {
		respondMessage(w, http.StatusNotFound, tagNotFound)
		return
	}
	if _, err := s.tags.GetByID(r.Context(), id); errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, tagNotFound)
		return
	} else if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if err := s.tags.Delete(r.Context(), id); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
