// Copyright 2017-2018 Denis Bernard <db047h@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package wayssrv implements a small HTTP service that exposes the ways
// translator as a network operation: POST the DSL, get back a rendered
// Model in the emitter of your choice, authenticated with a bearer JWT
// issued against a configured API client secret.
package wayssrv

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/db47h/ways"
	"github.com/db47h/ways/emit"
	"github.com/db47h/ways/internal/history"
)

// Client is one configured API client allowed to request bearer tokens.
type Client struct {
	ID         string
	SecretHash string // bcrypt hash of the client's secret
}

// Config configures a Server.
type Config struct {
	JWTSecret []byte
	Clients   map[string]Client // keyed by Client.ID
	TokenTTL  time.Duration
}

// Server wires the HTTP routes of SPEC_FULL.md section 4.7 to the
// translator pipeline and the history store.
type Server struct {
	cfg     Config
	history *history.Store
	router  chi.Router
}

// New returns a Server ready to be used as an http.Handler.
func New(cfg Config, h *history.Store) *Server {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}
	s := &Server{cfg: cfg, history: h}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/v1/tokens", s.handleIssueToken)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Post("/v1/translate", s.handleTranslate)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type tokenRequest struct {
	ClientID string `json:"clientId"`
	Secret   string `json:"secret"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	client, ok := s.cfg.Clients[req.ClientID]
	if !ok {
		http.Error(w, "unknown client", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(req.Secret)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	expiresAt := time.Now().Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   client.ID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := tok.SignedString(s.cfg.JWTSecret)
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: signed, ExpiresAt: expiresAt})
}

type clientIDKey struct{}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		raw := header[len(prefix):]

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return s.cfg.JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		if _, ok := s.cfg.Clients[claims.Subject]; !ok {
			http.Error(w, "unknown token subject", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), clientIDKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type translateRequest struct {
	Source string `json:"source"`
	Emit   string `json:"emit"` // "go" | "json" | "binary"; defaults to "json"
	Pkg    string `json:"pkg"`  // used only when Emit == "go"
}

type diagnosticView struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	model, diags, run, err := ways.Translate(strings.NewReader(req.Source))
	if s.history != nil {
		_ = s.history.Record(r.Context(), run)
	}
	w.Header().Set("X-Run-Id", run.ID.String())

	if err != nil {
		views := make([]diagnosticView, 0, len(diags.All()))
		for _, d := range diags.All() {
			views = append(views, diagnosticView{
				Severity: d.Severity.String(),
				Kind:     string(d.Kind),
				Message:  d.Message,
				Line:     d.Line,
				Column:   d.Column,
			})
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"diagnostics": views})
		return
	}

	switch req.Emit {
	case "", "json":
		data, err := emit.JSON(model)
		if err != nil {
			http.Error(w, "rendering response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	case "binary":
		data, err := emit.Binary(model)
		if err != nil {
			http.Error(w, "rendering response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	case "go":
		pkg := req.Pkg
		if pkg == "" {
			pkg = "lex"
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = emit.Go(w, model, pkg)
	default:
		http.Error(w, "unknown emit kind", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
