package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"compliancehub/internal/auth"
	"compliancehub/internal/metrics"
	"compliancehub/internal/scheduler"
)

func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	// Public
	r.Post("/login", a.Login)
	r.Get("/healthz", a.Healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Secured
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware)

		r.Post("/jobs/{name}/run", a.RunJob)
	})

	return r
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Log in
// @Description Verifies credentials, applies the tenant lifecycle gate, and issues a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /login [post]
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	user, err := a.Storage.GetUserByEmail(body.Email)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, body.Password); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	// Password is valid; the lifecycle gate decides whether a session
	// may be issued at all.
	decision, err := a.Gate.Check(user.TenantID)
	if err != nil {
		http.Error(w, "login temporarily unavailable", http.StatusInternalServerError)
		return
	}
	if !decision.Allow {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": decision.Message})
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), user.TenantID.String())
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	log.Printf("API: User %s logged in (tenant %s)", user.ID, user.TenantID)
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// @Summary Trigger a job manually
// @Description Enqueues a named reconciliation job without waiting for its schedule
// @Tags Jobs
// @Security ApiKeyAuth
// @Param name path string true "Job name"
// @Success 202
// @Failure 404
// @Router /jobs/{name}/run [post]
func (a *API) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !scheduler.KnownJob(name) {
		http.Error(w, "unknown job", http.StatusNotFound)
		return
	}

	if err := a.Sched.Enqueue(name); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("API: Job %s enqueued manually", name)
	w.WriteHeader(http.StatusAccepted)
}

// @Summary Health check
// @Tags Ops
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
