package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sportnest/sportnest/internal/domain/report"
	"github.com/sportnest/sportnest/internal/http/handlers"
)

type fakeReportsRepo struct {
	summaryFn func(ctx context.Context, filter report.Filter) (report.Summary, error)
}

func (f *fakeReportsRepo) Summary(ctx context.Context, filter report.Filter) (report.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, filter)
	}
	return report.Summary{}, nil
}

func sampleSummary() report.Summary {
	return report.Summary{
		GeneratedAt:  time.Now().UTC(),
		StatusCounts: report.StatusCounts{Pending: 2, Approved: 3, Rejected: 1},
		Monthly: []report.MonthlyBucket{
			{Month: "2026-08", Events: 3, Capacity: 60, Registrations: 30},
		},
		TopVenues: []report.VenueCount{{Venue: "Main Hall", Events: 3}},
		KPIs:      report.KPIs{Events: 6, Approved: 3, Capacity: 60, Registrations: 30, FeeRevenue: 450},
		Events: []report.EventRatio{
			{ID: "e1", Name: "Open Day", Venue: "Main Hall", Date: "2026-08-10", Capacity: 20, Registrations: 10, FillRatio: 0.5},
		},
	}
}

func TestSummaryJSONHandler(t *testing.T) {
	repo := &fakeReportsRepo{
		summaryFn: func(ctx context.Context, filter report.Filter) (report.Summary, error) {
			return sampleSummary(), nil
		},
	}

	h := handlers.NewReportsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/admin/reports/summary", nil, h.SummaryJSON)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("ETag") == "" {
		t.Fatal("expected ETag header on summary response")
	}

	var got report.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got.KPIs.Events != 6 || got.KPIs.FeeRevenue != 450 {
		t.Fatalf("unexpected kpis: %+v", got.KPIs)
	}
	if got.StatusCounts.Approved != 3 {
		t.Fatalf("unexpected status counts: %+v", got.StatusCounts)
	}
}

func TestSummaryFilterValidation(t *testing.T) {
	h := handlers.NewReportsHandler(&fakeReportsRepo{}, nil)
	r := setupRouter(http.MethodGet, "/admin/reports/summary", nil, h.SummaryJSON)

	tests := []struct {
		name string
		url  string
	}{
		{"bad_from", "/admin/reports/summary?from=yesterday"},
		{"bad_to", "/admin/reports/summary?to=2026-13-99"},
		{"bad_status", "/admin/reports/summary?status=archived"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestSummaryFilterPassthrough(t *testing.T) {
	repo := &fakeReportsRepo{
		summaryFn: func(ctx context.Context, filter report.Filter) (report.Summary, error) {
			if filter.From == nil || filter.From.Format("2006-01-02") != "2026-08-01" {
				return report.Summary{}, errors.New("from not passed")
			}
			if filter.Status == nil || *filter.Status != "approved" {
				return report.Summary{}, errors.New("status not passed")
			}
			return sampleSummary(), nil
		},
	}

	h := handlers.NewReportsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/admin/reports/summary", nil, h.SummaryJSON)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary?from=2026-08-01&status=approved", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSummaryCSVHandler(t *testing.T) {
	repo := &fakeReportsRepo{
		summaryFn: func(ctx context.Context, filter report.Filter) (report.Summary, error) {
			return sampleSummary(), nil
		},
	}

	h := handlers.NewReportsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/admin/reports/summary.csv", nil, h.SummaryCSV)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary.csv", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("got content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sportnest-summary.csv") {
		t.Fatalf("got content disposition %q", cd)
	}

	body := w.Body.String()
	if !strings.Contains(body, "kpi,feeRevenue,450.00") {
		t.Fatalf("kpi row missing from csv:\n%s", body)
	}
	if !strings.Contains(body, "Open Day") {
		t.Fatalf("per-event row missing from csv:\n%s", body)
	}
}

func TestSummaryRepoError(t *testing.T) {
	repo := &fakeReportsRepo{
		summaryFn: func(ctx context.Context, filter report.Filter) (report.Summary, error) {
			return report.Summary{}, errors.New("db error")
		},
	}

	h := handlers.NewReportsHandler(repo, nil)
	r := setupRouter(http.MethodGet, "/admin/reports/summary", nil, h.SummaryJSON)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
