package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/wordapi/internal/auth"
	"github.com/example/wordapi/internal/database"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if errs := decodeJSON(r, &input); errs != nil {
		respondValidation(w, errs)
		return
	}

	user, err := s.users.GetByEmail(r.Context(), strings.ToLower(input.Email))
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if !auth.VerifyPassword(input.Password, user.Password) {
		respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, err := s.tokens.GenerateAccess(user)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	refreshToken, err := s.tokens.GenerateRefresh(user.ID)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		respondMessage(w, http.StatusUnauthorized, "Missing Authorization Header")
		return
	}
	claims, err := s.tokens.ValidateRefresh(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		respondMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		respondMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	// Claims are re-read from storage here: a refresh picks up role
	// changes, unlike outstanding access tokens.
	user, err := s.users.GetByID(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	accessToken, err := s.tokens.GenerateAccess(user)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}
