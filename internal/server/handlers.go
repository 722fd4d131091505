package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/easel/pkg/buildinfo"
	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/geometry"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/settings"
	"github.com/matzehuels/easel/pkg/warnings"
)

// maxBodyBytes bounds request bodies; a full settings document is well
// under 2KB.
const maxBodyBytes = 64 << 10

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError maps a coded error to an HTTP status.
func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidField, errors.ErrCodeInvalidValue,
		errors.ErrCodeInvalidToken, errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidPreset,
		errors.ErrCodeUnsupportedVersion:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeStorage:
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

// decodeSettings reads a partial settings object. Keys that are absent
// keep the server's defaults.
func (s *Server) decodeSettings(raw json.RawMessage) (settings.Persistable, error) {
	p := settings.FromState(s.config.DefaultState())
	if len(raw) == 0 {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return settings.Persistable{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid settings")
	}
	return p, nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body too large")
	}
	return body, nil
}

// Calculation is the derived output for one settings document.
type Calculation struct {
	Settings   settings.Persistable `json:"settings"`
	Dimensions paper.Dimensions     `json:"dimensions"`
	Geometry   geometry.Result      `json:"geometry"`
	Readings   geometry.Readings    `json:"readings"`
	Warnings   []warnings.Warning   `json:"warnings"`
}

// calculate loads p into a fresh machine with one batch update so the usual
// shadow commits and fallbacks apply.
func (s *Server) calculate(p settings.Persistable) (Calculation, error) {
	opts := append(append([]calculator.Option(nil), s.machine...),
		calculator.WithInitialState(s.config.DefaultState()))
	m := calculator.New(opts...)
	if err := m.Dispatch(p.Action()); err != nil {
		return Calculation{}, err
	}
	snap := m.Snapshot()

	active := snap.Derived.Warnings.Active()
	if active == nil {
		active = []warnings.Warning{}
	}
	return Calculation{
		Settings:   settings.FromState(snap.State),
		Dimensions: snap.Derived.Dimensions,
		Geometry:   snap.Derived.Geometry,
		Readings:   snap.Derived.Geometry.Readings(),
		Warnings:   active,
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"papers": s.tables.Papers.All(),
		"ratios": s.tables.Ratios.All(),
		"easels": s.tables.Easels.All(),
	})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.decodeSettings(body)
	if err != nil {
		respondError(w, err)
		return
	}
	calc, err := s.calculate(p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, calc)
}

type shareRequest struct {
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type shareResponse struct {
	Token     string      `json:"token"`
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	Result    Calculation `json:"result"`
}

func (s *Server) handleShareCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req shareRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	p, err := s.decodeSettings(req.Settings)
	if err != nil {
		respondError(w, err)
		return
	}

	// share what the calculator settles on, not the raw request
	calc, err := s.calculate(p)
	if err != nil {
		respondError(w, err)
		return
	}
	sp, err := settings.NewSharedPreset(req.Name, calc.Settings)
	if err != nil {
		respondError(w, err)
		return
	}
	token, err := settings.EncodeShare(sp)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, shareResponse{
		Token:     token,
		ID:        sp.ID,
		Name:      sp.Name,
		CreatedAt: sp.CreatedAt,
		Result:    calc,
	})
}

func (s *Server) handleShareGet(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	sp, err := settings.DecodeShare(token)
	if err != nil {
		respondError(w, err)
		return
	}
	calc, err := s.calculate(sp.Settings)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shareResponse{
		Token:     token,
		ID:        sp.ID,
		Name:      sp.Name,
		CreatedAt: sp.CreatedAt,
		Result:    calc,
	})
}

type presetResponse struct {
	settings.SharedPreset
	Token string `json:"token,omitempty"`
}

func withToken(sp settings.SharedPreset) presetResponse {
	token, _ := settings.EncodeShare(sp)
	return presetResponse{SharedPreset: sp, Token: token}
}

func (s *Server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	all, err := s.presets.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]presetResponse, 0, len(all))
	for _, sp := range all {
		out = append(out, withToken(sp))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePresetGet(w http.ResponseWriter, r *http.Request) {
	sp, err := s.presets.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withToken(sp))
}

func (s *Server) handlePresetPut(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.decodeSettings(body)
	if err != nil {
		respondError(w, err)
		return
	}
	calc, err := s.calculate(p)
	if err != nil {
		respondError(w, err)
		return
	}
	sp, err := s.presets.Save(r.Context(), settings.SharedPreset{
		Name:     chi.URLParam(r, "name"),
		Settings: calc.Settings,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withToken(sp))
}

func (s *Server) handlePresetDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.presets.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
