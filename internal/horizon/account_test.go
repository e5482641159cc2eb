package horizon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFetchAccountParsesBalances(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/GABC123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "GABC123",
			"balances": [
				{
					"asset_type": "credit_alphanum4",
					"asset_code": "SVT",
					"asset_issuer": "GISSUER1",
					"balance": "12.3456789"
				},
				{
					"asset_type": "native",
					"balance": "1000.0000000"
				}
			],
			"data": {
				"reward_rate_bps": "NTAw"
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	account, err := client.FetchAccount(context.Background(), "GABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.ID != "GABC123" {
		t.Errorf("ID = %q, want GABC123", account.ID)
	}
	if len(account.Balances) != 2 {
		t.Fatalf("balances count = %d, want 2", len(account.Balances))
	}
	if account.Balances[1].AssetType != "native" {
		t.Errorf("balance[1].AssetType = %q, want native", account.Balances[1].AssetType)
	}
	if account.Data["reward_rate_bps"] != "NTAw" {
		t.Errorf("data[reward_rate_bps] = %q, want NTAw", account.Data["reward_rate_bps"])
	}

	bal, err := account.BalanceOf("SVT", "GISSUER1")
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if !bal.Equal(decimal.RequireFromString("12.3456789")) {
		t.Errorf("balance = %s, want 12.3456789", bal)
	}
}

func TestFetchAccountNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": 404, "title": "Resource Missing"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	_, err := client.FetchAccount(context.Background(), "GNOTEXIST")
	if err == nil {
		t.Fatal("expected error for missing account, got nil")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || !statusErr.NotFound() {
		t.Errorf("error = %v, want wrapped 404 StatusError", err)
	}
}

func TestBalanceOf(t *testing.T) {
	account := HorizonAccount{
		ID: "GABC",
		Balances: []HorizonBalance{
			{AssetType: "native", Balance: "10.0000000"},
			{AssetType: "credit_alphanum4", AssetCode: "SVT", AssetIssuer: "GOTHER", Balance: "7.0000000"},
			{AssetType: "credit_alphanum4", AssetCode: "SVT", AssetIssuer: "GISSUER", Balance: "100.5000000"},
			{AssetType: "credit_alphanum4", AssetCode: "BAD", AssetIssuer: "GISSUER", Balance: "n/a"},
		},
	}

	tests := []struct {
		name    string
		code    string
		issuer  string
		want    string
		wantErr bool
	}{
		{"found", "SVT", "GISSUER", "100.5", false},
		{"issuer must match", "SVT", "GNOBODY", "0", false},
		{"missing trustline", "USDC", "GISSUER", "0", false},
		{"unparseable balance", "BAD", "GISSUER", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := account.BalanceOf(tt.code, tt.issuer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BalanceOf() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("BalanceOf() = %s, want %s", got, tt.want)
			}
		})
	}
}
