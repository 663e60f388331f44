package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
	errInvalidSecret    = errors.New("stripe webhook secret must start with whsec_")
)

// Client carries the configured Stripe credentials and the checkout settings
// (settlement currency, shipping countries) every session is created with.
type Client struct {
	environment   string
	signingSecret string
	currency      enums.Currency
	countries     []string
}

// NewClient initializes Stripe once with the configured secrets and env.
// The webhook signing secret is optional; without it webhook delivery is rejected.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	stripe.Key = apiKey

	signingSecret := strings.TrimSpace(cfg.Secret)
	if signingSecret != "" && !strings.HasPrefix(signingSecret, "whsec_") {
		return nil, errInvalidSecret
	}

	currency := enums.CurrencyUSD
	if strings.TrimSpace(cfg.Currency) != "" {
		if currency, err = enums.ParseCurrency(cfg.Currency); err != nil {
			return nil, fmt.Errorf("stripe checkout currency: %w", err)
		}
	}
	countries, err := normalizeCountries(cfg.AllowedCountries)
	if err != nil {
		return nil, err
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"webhooks_enabled":   signingSecret != "",
			"currency":           currency,
			"shipping_countries": countries,
		})
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		environment:   env,
		signingSecret: signingSecret,
		currency:      currency,
		countries:     countries,
	}, nil
}

// Currency is the settlement currency of checkout sessions.
func (c *Client) Currency() enums.Currency {
	if c == nil {
		return ""
	}
	return c.currency
}

// AllowedCountries lists the ISO country codes shipping addresses may use.
func (c *Client) AllowedCountries() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.countries...)
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}

// normalizeCountries uppercases and dedupes the shipping countries. Stripe
// only accepts two-letter ISO codes there.
func normalizeCountries(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, entry := range raw {
		code := strings.ToUpper(strings.TrimSpace(entry))
		if code == "" || seen[code] {
			continue
		}
		if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
			return nil, fmt.Errorf("stripe shipping country %q is not a two-letter ISO code", entry)
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}
