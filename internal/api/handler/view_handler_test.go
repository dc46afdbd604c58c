package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/core/domain"
)

func TestViewHandler_Dashboard(t *testing.T) {
	rows := []domain.Posting{
		mustPosting(1, 100, "100", "05-01-2024", false),
		mustPosting(2, 200, "60", "10-02-2024", true),
		mustPosting(3, 100, "50", "10-02-2023", false),
	}
	h := NewViewHandler(&stubViews{rows: rows}, &stubScopeService{selected: "1"}, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/api/dashboard", "", accountantSession())
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Status string            `json:"status"`
		Data   dashboardResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "ready" || len(resp.Data.Cards) != 4 {
		t.Fatalf("unexpected view: %+v", resp)
	}
	if resp.Data.Cards[0].Value != "160.00" || resp.Data.Cards[0].Percent != 320 {
		t.Fatalf("unexpected amount card: %+v", resp.Data.Cards[0])
	}
	if len(resp.Data.TopAccounts) != 2 || resp.Data.TopAccounts[0].Account != 100 || resp.Data.TopAccounts[0].Total != "150.00" {
		t.Fatalf("unexpected top accounts: %+v", resp.Data.TopAccounts)
	}
}

func TestViewHandler_Dashboard_NoCompany(t *testing.T) {
	h := NewViewHandler(&stubViews{}, &stubScopeService{}, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/api/dashboard", "", accountantSession())
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp viewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "empty" || resp.Message != "no company selected" || resp.Error != "" {
		t.Fatalf("unexpected view: %+v", resp)
	}
}

func TestViewHandler_Line(t *testing.T) {
	rows := []domain.Posting{
		mustPosting(1, 100, "10", "05-02-2024", false),
		mustPosting(2, 100, "5", "20-01-2024", false),
		mustPosting(3, 100, "1", "21-01-2024", false),
	}
	h := NewViewHandler(&stubViews{rows: rows}, &stubScopeService{selected: "1"}, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/api/charts/line", "", accountantSession())
	if err := h.Line(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp struct {
		Data []monthlyResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 months, got %+v", resp.Data)
	}
	if resp.Data[0].Label != "01-2024" || resp.Data[0].Total != "6.00" || resp.Data[1].Label != "02-2024" {
		t.Fatalf("unexpected series: %+v", resp.Data)
	}
}
