package service

import (
	"context"
	"course_market_backend/internal/config"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"encoding/json"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// PaymentGateway 第三方支付渠道
type PaymentGateway interface {
	// CreatePaymentIntent 创建支付意图并返回客户端确认用的 client secret
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

var currencyPattern = regexp.MustCompile(`^[a-z]{3}$`)

type PaymentService struct {
	gateway PaymentGateway
	policy  atomic.Pointer[config.PaymentConfig]
}

func NewPaymentService(gateway PaymentGateway, cfg config.PaymentConfig) *PaymentService {
	s := &PaymentService{gateway: gateway}
	s.UpdatePolicy(cfg)
	return s
}

// UpdatePolicy 配置热加载时替换币种策略
func (s *PaymentService) UpdatePolicy(cfg config.PaymentConfig) {
	s.policy.Store(&cfg)
}

// ResolveCurrency 根据币种策略决定实际发送给支付渠道的币种
func (s *PaymentService) ResolveCurrency(requested string) (string, error) {
	policy := s.policy.Load()
	if policy.CurrencyMode == config.CurrencyModeFixed {
		return strings.ToLower(policy.FixedCurrency), nil
	}

	currency := strings.ToLower(strings.TrimSpace(requested))
	if currency == "" {
		currency = strings.ToLower(policy.DefaultCurrency)
	}
	if !currencyPattern.MatchString(currency) {
		return "", util.NewValidationError("Invalid currency", "currency must be a three-letter ISO code")
	}
	return currency, nil
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, rawAmount json.RawMessage, currency string) (string, error) {
	amount, err := util.ParseMinorAmount(rawAmount)
	if err != nil {
		return "", err
	}

	resolved, err := s.ResolveCurrency(currency)
	if err != nil {
		return "", err
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, amount, resolved)
	if err != nil {
		monitoring.PaymentIntents.WithLabelValues("failure").Inc()
		logger.Log.Error("payment intent creation failed",
			zap.Int64("amount", amount),
			zap.String("currency", resolved),
			zap.Error(err),
		)
		return "", err
	}

	monitoring.PaymentIntents.WithLabelValues("success").Inc()
	return secret, nil
}
