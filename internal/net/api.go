package net

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ColoringBoard/internal/state"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type catalogResponse struct {
	Categories []state.Category `json:"categories"`
	Favorites  []string         `json:"favorites"`
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}

type toggleResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

type statusResponse struct {
	Peers    int    `json:"peers"`
	Pages    int    `json:"pages"`
	Share    string `json:"share,omitempty"`
	Sessions []Peer `json:"sessions"`
}

func (s *HTTPServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Categories: s.Catalog.Categories(),
		Favorites:  s.favoriteList(),
	})
}

func (s *HTTPServer) favoriteList() []string {
	if s.Favorites == nil {
		return []string{}
	}
	return s.Favorites.List()
}

// handleThumbnail serves /api/v1/pages/{id}/thumbnail. Page ids may contain
// slashes, so the id is everything between the prefix and the suffix.
func (s *HTTPServer) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/pages/")
	id, ok := strings.CutSuffix(rest, "/thumbnail")
	if !ok || id == "" {
		writeAPIError(w, http.StatusNotFound, "not_found", "no such resource")
		return
	}
	page, err := s.Catalog.Page(id)
	if err != nil || page.Blank() {
		writeAPIError(w, http.StatusNotFound, "unknown_page", "unknown page")
		return
	}
	data, err := s.Thumbnails.Get(r.Context(), page)
	if err != nil {
		s.log.Warn("thumbnail", "page", id, "err", err)
		writeAPIError(w, http.StatusBadGateway, "thumbnail_failed", "could not load page image")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, favoritesResponse{Favorites: s.favoriteList()})
}

func (s *HTTPServer) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if s.Favorites == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "favorites not configured")
		return
	}
	id := r.PathValue("id")
	if _, err := s.Catalog.Page(id); err != nil {
		if errors.Is(err, state.ErrUnknownPage) {
			writeAPIError(w, http.StatusNotFound, "unknown_page", err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	on, err := s.Favorites.Toggle(id)
	if err != nil {
		s.log.Error("toggle favorite", "page", id, "err", err)
		writeAPIError(w, http.StatusInternalServerError, "favorites_failed", "could not save favorites")
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: id, Favorite: on})
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessions := s.peers.Peers()
	resp := statusResponse{Peers: len(sessions), Pages: s.Catalog.Len(), Sessions: sessions}
	if share, err := s.ShareURL(); err == nil {
		resp.Share = share
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleQRCode(w http.ResponseWriter, r *http.Request) {
	share, err := s.ShareURL()
	if err != nil {
		writeAPIError(w, http.StatusServiceUnavailable, "not_listening", err.Error())
		return
	}
	data, err := QRCodePNG(share, 256)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qrcode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
