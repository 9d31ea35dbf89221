package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/wordapi/internal/auth"
	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/internal/validation"
	"github.com/example/wordapi/pkg/models"
)

const userNotFound = "User not found"

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	id, err := pathID(r, "id_user")
	if err != nil {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	}
	if !auth.IsSelfOrAdmin(claims, id) {
		respondMessage(w, http.StatusForbidden, "user must be himself or admin!")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.GetAll(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var input validation.UserInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	input.Email = strings.ToLower(input.Email)

	emailTaken, err := s.users.EmailTaken(r.Context(), input.Email, 0)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	knownRoles, err := s.roles.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateNewUser(input, emailTaken, knownRoles); errs.Any() {
		respondValidation(w, errs)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	user := &models.User{Name: input.Name, Email: input.Email, Password: hash}
	if err := s.users.Create(r.Context(), user, input.Roles); err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	if _, err := s.users.GetByID(r.Context(), userID); errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	} else if err != nil {
		respondError(w, s.logger, err)
		return
	}

	var input validation.ProfileInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	input.Email = strings.ToLower(input.Email)

	emailTaken, err := s.users.EmailTaken(r.Context(), input.Email, userID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if errs := validation.ValidateProfile(input, emailTaken); errs.Any() {
		respondValidation(w, errs)
		return
	}

	if err := s.users.UpdateProfile(r.Context(), userID, input.Name, input.Email); err != nil {
		respondError(w, s.logger, err)
		return
	}
	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	user, err := s.users.GetByID(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	var input validation.PasswordChangeInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}
	if errs := validation.ValidatePasswordChange(input); errs.Any() {
		respondValidation(w, errs)
		return
	}
	if !auth.VerifyPassword(input.OldPassword, user.Password) {
		respondMessage(w, http.StatusBadRequest, "password is incorrect")
		return
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if err := s.users.UpdatePassword(r.Context(), userID, hash); err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "password updated")
}

func (s *Server) updateUserRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_user")
	if err != nil {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	}
	target, err := s.users.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	var input validation.RolesUpdateInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}

	knownRoles, err := s.roles.AllIDs(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	otherAdmins, err := s.users.CountAdmins(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	lastAdmin := target.IsAdmin && otherAdmins == 0
	if errs := validation.ValidateRolesUpdate(input, knownRoles, lastAdmin); errs.Any() {
		respondValidation(w, errs)
		return
	}

	isAdmin := target.IsAdmin
	if input.IsAdmin != nil {
		isAdmin = *input.IsAdmin
	}
	if err := s.users.UpdateRoles(r.Context(), id, isAdmin, input.Roles); err != nil {
		respondError(w, s.logger, err)
		return
	}
	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id_user")
	if err != nil {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	}
	if callerID == id {
		respondMessage(w, http.StatusBadRequest, "admin cannot delete himself")
		return
	}
	if _, err := s.users.GetByID(r.Context(), id); errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, userNotFound)
		return
	} else if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.roles.GetAll(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if roles == nil {
		roles = []models.Role{}
	}
	respondJSON(w, http.StatusOK, roles)
}
