package tonapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecentIncoming(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transactions":[
			{"hash":"h1","in_msg":{"source":"W","value":2500000000}},
			{"hash":"h2"},
			{"hash":"h3","in_msg":{"source":"","value":1}},
			{"hash":"h4","in_msg":{"source":"W2","value":1000000000}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	transfers, err := c.RecentIncoming(context.Background(), "EQproject", 30)
	if err != nil {
		t.Fatalf("RecentIncoming() error = %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotPath != "/v2/blockchain/accounts/EQproject/transactions" {
		t.Errorf("path = %q", gotPath)
	}

	// h2 has no in_msg and h3 has no source; both are dropped
	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(transfers))
	}
	if transfers[0].Hash != "h1" || transfers[0].Sender != "W" || transfers[0].ValueNano != 2500000000 {
		t.Errorf("unexpected first transfer: %+v", transfers[0])
	}
	if transfers[1].Hash != "h4" {
		t.Errorf("unexpected second transfer: %+v", transfers[1])
	}
}

func TestRecentIncomingUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"auth rejected", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"transactions":`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(srv.URL, "k")
			_, err := c.RecentIncoming(context.Background(), "EQproject", 30)
			if !errors.Is(err, ErrUpstreamUnavailable) {
				t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
			}
		})
	}
}

func TestRecentIncomingUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "k")
	_, err := c.RecentIncoming(context.Background(), "EQproject", 30)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestUSDPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"TON":{"prices":{"USD":5.42}}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	price, err := c.USDPrice(context.Background(), "TON")
	if err != nil {
		t.Fatalf("USDPrice() error = %v", err)
	}
	if price != 5.42 {
		t.Errorf("USDPrice() = %v, want 5.42", price)
	}
}
