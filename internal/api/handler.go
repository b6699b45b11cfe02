package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/lifecycle"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/repertoire"
	"ms-cinema/internal/reservation"
	"ms-cinema/internal/utils"
)

type Handler struct {
	Reservations *reservation.Service
	Lifecycle    *lifecycle.Service
	Repertoire   *repertoire.Service
	Auth         *auth.Service
	Logger       *logger.Logger
}

func NewHandler(reservations *reservation.Service, lc *lifecycle.Service, rep *repertoire.Service, authService *auth.Service) *Handler {
	return &Handler{
		Reservations: reservations,
		Lifecycle:    lc,
		Repertoire:   rep,
		Auth:         authService,
		Logger:       logger.NewLogger(),
	}
}

// Routes mounts all endpoints. Scanning is clerk-only and sits behind the
// token middleware.
func (h *Handler) Routes(tokens *auth.TokenIssuer) chi.Router {
	r := chi.NewRouter()

	r.Post("/api/auth/login", h.Login)
	r.Get("/api/repertoire", h.GetRepertoire)
	r.Get("/api/screenings/{screeningID}", h.GetScreeningDetails)
	r.Post("/api/reservation", h.ReserveSeats)
	r.Get("/api/tickets/{ticketNumber}", h.CheckTicket)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens))
		r.Post("/api/tickets/{ticketNumber}/scan", h.ScanTicket)
	})

	return r
}

func (h *Handler) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "ReserveSeats: received request")

	var req models.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReserveSeats: failed to decode request body: %v", err))
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Logger.Debug("API", fmt.Sprintf("ReserveSeats: screening=%d seats=%v", req.ScreeningID, req.SeatIDs))

	view, err := h.Reservations.ReserveSeats(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReserveSeats: reservation failed: %v", err))
		h.writeError(w, reservationStatus(err), "Reservation failed", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("ReserveSeats: ticket %s created", view.TicketID))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Reservation created", view))
}

func (h *Handler) CheckTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber := chi.URLParam(r, "ticketNumber")
	h.Logger.Info("API", fmt.Sprintf("CheckTicket: ticketNumber=%s", ticketNumber))

	view, err := h.Lifecycle.CheckTicket(r.Context(), ticketNumber)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckTicket: lookup failed: %v", err))
		h.writeError(w, lifecycleStatus(err), "Ticket lookup failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket found", view))
}

func (h *Handler) ScanTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber := chi.URLParam(r, "ticketNumber")
	clerk := auth.ClerkUsername(r.Context())
	h.Logger.Info("API", fmt.Sprintf("ScanTicket: ticketNumber=%s clerk=%s", ticketNumber, clerk))

	view, err := h.Lifecycle.ScanTicket(r.Context(), ticketNumber)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ScanTicket: scan failed: %v", err))
		h.writeError(w, lifecycleStatus(err), "Ticket scan failed", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("ScanTicket: ticket %s marked as used", ticketNumber))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket admitted", view))
}

func (h *Handler) GetRepertoire(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	h.Logger.Info("API", fmt.Sprintf("GetRepertoire: date=%s", dateParam))

	date := time.Now()
	if dateParam != "" {
		parsed, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			h.Logger.Error("API", fmt.Sprintf("GetRepertoire: invalid date: %v", err))
			h.writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		date = parsed
	}

	movies, err := h.Repertoire.MoviesForDate(r.Context(), date)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetRepertoire: failed to load repertoire: %v", err))
		h.writeError(w, http.StatusInternalServerError, "Failed to load repertoire", err)
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Repertoire loaded", movies))
}

func (h *Handler) GetScreeningDetails(w http.ResponseWriter, r *http.Request) {
	screeningID, err := parseID(chi.URLParam(r, "screeningID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid screening ID", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("GetScreeningDetails: screeningID=%d", screeningID))

	details, err := h.Repertoire.ScreeningDetails(r.Context(), screeningID)
	if err != nil {
		if errors.Is(err, repertoire.ErrScreeningNotFound) {
			h.writeError(w, http.StatusNotFound, "Screening not found", err)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetScreeningDetails: failed to load details: %v", err))
		h.writeError(w, http.StatusInternalServerError, "Failed to load screening", err)
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Screening loaded", details))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Login: username=%s", creds.Username))

	token, err := h.Auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "Invalid credentials", err)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Login: failed: %v", err))
		h.writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Login successful", map[string]string{"token": token}))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
}
