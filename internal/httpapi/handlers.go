package httpapi

import (
	"net/http"
	"time"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/types"
	"github.com/BrandonDHaskell/timekeep/internal/validation"
)

type cardDateQuery struct {
	CardNo string `query:"card_no" validate:"required"`
	Date   string `query:"date"`
}

type cardMonthQuery struct {
	CardNo string `query:"card_no" validate:"required"`
	Month  string `query:"month"`
}

type cardYearQuery struct {
	CardNo string `query:"card_no" validate:"required"`
	Year   string `query:"year"`
}

type searchQuery struct {
	Search string `query:"search" validate:"max=100"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:         "ok",
		SchemaResolved: s.ready(),
		ServerTime:     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.Dashboard(r.Context())
	if err != nil {
		s.handleServiceError(w, r, "dashboard", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Search: r.URL.Query().Get("search")}
	if verr := validation.ValidateStruct(q); verr != nil {
		writeValidation(w, verr)
		return
	}
	resp, err := s.reports.SearchEmployees(r.Context(), q.Search)
	if err != nil {
		s.handleServiceError(w, r, "employees", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.Mapping(r.Context())
	if err != nil {
		s.handleServiceError(w, r, "mapping", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := cardDateQuery{CardNo: v.Get("card_no"), Date: v.Get("date")}
	if verr := validation.ValidateStruct(q); verr != nil {
		writeValidation(w, verr)
		return
	}
	resp, err := s.reports.Daily(r.Context(), q.CardNo, q.Date)
	if err != nil {
		s.handleServiceError(w, r, "daily", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := cardMonthQuery{CardNo: v.Get("card_no"), Month: v.Get("month")}
	if verr := validation.ValidateStruct(q); verr != nil {
		writeValidation(w, verr)
		return
	}
	resp, err := s.reports.Monthly(r.Context(), q.CardNo, q.Month)
	if err != nil {
		s.handleServiceError(w, r, "monthly", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := cardYearQuery{CardNo: v.Get("card_no"), Year: v.Get("year")}
	if verr := validation.ValidateStruct(q); verr != nil {
		writeValidation(w, verr)
		return
	}
	resp, err := s.reports.Yearly(r.Context(), q.CardNo, q.Year)
	if err != nil {
		s.handleServiceError(w, r, "yearly", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleDailyAll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.DailyAll(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.handleServiceError(w, r, "daily_all", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleMonthlyAll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.MonthlyAll(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.handleServiceError(w, r, "monthly_all", err)
		return
	}
	s.respond(w, r, resp)
}

func (s *Server) handleYearlyAll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.YearlyAll(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		s.handleServiceError(w, r, "yearly_all", err)
		return
	}
	s.respond(w, r, resp)
}
