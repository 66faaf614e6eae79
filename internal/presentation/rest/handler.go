package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/model"
)

// Handler adapts the intake use cases to JSON over HTTP.
type Handler struct {
	uc     usecase.UseCases
	logger *slog.Logger
}

// NewHandler creates the intake API handler.
func NewHandler(uc usecase.UseCases, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}

// QuoteEMI handles GET /api/emi?principal=&rate=&years=&full=.
func (h *Handler) QuoteEMI(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuoteQuery(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.uc.Quote.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitApplication handles POST /api/loans.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitApplicationRequest
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.uc.Submit.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ExportApplications handles POST /api/export and streams the file back.
func (h *Handler) ExportApplications(w http.ResponseWriter, r *http.Request) {
	var req dto.ExportRequest
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.uc.Export.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if resp.Empty {
		writeMessage(w, http.StatusNotFound, resp.Message)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Data); err != nil {
		h.logger.Warn("export write interrupted", "error", err, "filename", resp.Filename)
	}
}

// AdminLogin handles POST /api/admin/login.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.uc.AdminLogin.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListApplications handles GET /api/admin/loans[?date=].
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.List.Execute(r.Context(), dto.ListApplicationsRequest{
		Date: r.URL.Query().Get("date"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteApplication handles DELETE /api/admin/loans/{id}.
func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	err := h.uc.Delete.Execute(r.Context(), dto.DeleteApplicationRequest{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteApplicationsByDate handles DELETE /api/admin/loans?date=.
func (h *Handler) DeleteApplicationsByDate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.DeleteDay.Execute(r.Context(), dto.DeleteApplicationsByDateRequest{
		Date: r.URL.Query().Get("date"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseQuoteQuery(r *http.Request) (dto.QuoteEMIRequest, error) {
	q := r.URL.Query()
	var req dto.QuoteEMIRequest

	principal, err := decimal.NewFromString(strings.TrimSpace(q.Get("principal")))
	if err != nil {
		return req, fmt.Errorf("%w: principal must be a number", model.ErrInvalidTerms)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(q.Get("rate")))
	if err != nil {
		return req, fmt.Errorf("%w: rate must be a number", model.ErrInvalidTerms)
	}
	years, err := strconv.Atoi(strings.TrimSpace(q.Get("years")))
	if err != nil {
		return req, fmt.Errorf("%w: years must be a whole number", model.ErrInvalidTerms)
	}
	var full bool
	if v := q.Get("full"); v != "" {
		if full, err = strconv.ParseBool(v); err != nil {
			return req, fmt.Errorf("%w: full must be true or false", model.ErrInvalidTerms)
		}
	}

	req.Principal = principal
	req.AnnualRatePercent = rate
	req.TenureYears = years
	req.FullSchedule = full
	return req, nil
}
