package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hotelbook/internal/models"
)

type invoiceResponse struct {
	ID        int64             `json:"id"`
	BookingID int64             `json:"booking_id"`
	Items     []models.LineItem `json:"items"`
	Total     json.Number       `json:"total"`
	Paid      bool              `json:"paid"`
}

func newInvoiceResponse(inv models.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:        inv.ID,
		BookingID: inv.BookingID,
		Items:     inv.Items,
		Total:     models.Amount(inv.Total()),
		Paid:      inv.Paid,
	}
}

// GET /invoices/{id}
func (s *HTTPServer) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := s.store.Invoice(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceResponse(inv))
}

// POST /invoices/{id}/pay
func (s *HTTPServer) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := s.store.MarkPaid(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceResponse(inv))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /reports/occupancy.xlsx
func (s *HTTPServer) handleOccupancyReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusNotFound, "reports are disabled")
		return
	}

	var buf bytes.Buffer
	if err := s.reports.WriteOccupancy(r.Context(), &buf); err != nil {
		s.logger.Error().Err(err).Msg("build occupancy report")
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	name := fmt.Sprintf("occupancy_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
