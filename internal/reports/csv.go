package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sportnest/sportnest/internal/domain/report"
)

// WriteCSV renders the summary aggregate as a flat export. Sections are
// stacked in one file the way the dashboard download expects: KPIs first,
// then status counts, monthly trend, top venues and the per-event rows.
func WriteCSV(w io.Writer, s report.Summary) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"section", "key", "value"},
		{"kpi", "events", strconv.Itoa(s.KPIs.Events)},
		{"kpi", "approved", strconv.Itoa(s.KPIs.Approved)},
		{"kpi", "capacity", strconv.Itoa(s.KPIs.Capacity)},
		{"kpi", "registrations", strconv.Itoa(s.KPIs.Registrations)},
		{"kpi", "feeRevenue", formatAmount(s.KPIs.FeeRevenue)},
		{"status", "pending", strconv.Itoa(s.StatusCounts.Pending)},
		{"status", "approved", strconv.Itoa(s.StatusCounts.Approved)},
		{"status", "rejected", strconv.Itoa(s.StatusCounts.Rejected)},
	}

	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return err
	}

	if err := cw.Write([]string{"month", "events", "capacity", "registrations"}); err != nil {
		return err
	}
	for _, m := range s.Monthly {
		if err := cw.Write([]string{m.Month, strconv.Itoa(m.Events), strconv.Itoa(m.Capacity), strconv.Itoa(m.Registrations)}); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return err
	}

	if err := cw.Write([]string{"venue", "events"}); err != nil {
		return err
	}
	for _, v := range s.TopVenues {
		if err := cw.Write([]string{v.Venue, strconv.Itoa(v.Events)}); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return err
	}

	if err := cw.Write([]string{"event_id", "name", "venue", "date", "capacity", "registrations", "fill_ratio"}); err != nil {
		return err
	}
	for _, e := range s.Events {
		if err := cw.Write([]string{
			e.ID, e.Name, e.Venue, e.Date,
			strconv.Itoa(e.Capacity), strconv.Itoa(e.Registrations),
			fmt.Sprintf("%.2f", e.FillRatio),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
