package stripe

import (
	"context"
	"testing"

	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
)

func TestNewClientValidatesKeyAgainstEnv(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.StripeConfig
		wantErr bool
	}{
		{name: "test key", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "test"}},
		{name: "restricted live key", cfg: config.StripeConfig{APIKey: "rk_live_123", Env: "LIVE"}},
		{name: "live key in test", cfg: config.StripeConfig{APIKey: "sk_live_123", Env: "test"}, wantErr: true},
		{name: "missing key", cfg: config.StripeConfig{Env: "test"}, wantErr: true},
		{name: "unknown env", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "staging"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tc.cfg, nil)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClientAccessors(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_abc", Secret: " whsec_1 "}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Environment() != testEnv {
		t.Fatalf("expected test env, got %q", client.Environment())
	}
	if client.SigningSecret() != "whsec_1" {
		t.Fatalf("unexpected signing secret %q", client.SigningSecret())
	}

	var nilClient *Client
	if nilClient.SigningSecret() != "" || nilClient.Environment() != "" {
		t.Fatal("expected nil client accessors to be empty")
	}
}

func TestNewClientCheckoutSettings(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		APIKey:           "sk_test_abc",
		Currency:         " CAD ",
		AllowedCountries: []string{"us", " ca", "US", ""},
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Currency() != enums.CurrencyCAD {
		t.Fatalf("expected cad, got %q", client.Currency())
	}
	if got := client.AllowedCountries(); len(got) != 2 || got[0] != "US" || got[1] != "CA" {
		t.Fatalf("unexpected countries %v", got)
	}

	defaults, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_abc"}, nil)
	if err != nil || defaults.Currency() != enums.CurrencyUSD {
		t.Fatalf("expected usd default, got %v %v", defaults, err)
	}
}

func TestNewClientRejectsBadCheckoutSettings(t *testing.T) {
	cases := map[string]config.StripeConfig{
		"currency": {APIKey: "sk_test_abc", Currency: "eur"},
		"country":  {APIKey: "sk_test_abc", AllowedCountries: []string{"USA"}},
		"secret":   {APIKey: "sk_test_abc", Secret: "not-a-webhook-secret"},
	}
	for name, cfg := range cases {
		if _, err := NewClient(context.Background(), cfg, nil); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
