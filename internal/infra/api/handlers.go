package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/infra/logging"
	"celebrity-subscription/internal/infra/metrics"
	red "celebrity-subscription/internal/infra/redis"
	"celebrity-subscription/internal/usecase"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("", "request body is required")
		}
		return domain.NewValidationError("", "invalid JSON body")
	}
	return nil
}

// recordSecondaryFailures counts best-effort steps that did not land.
func recordSecondaryFailures(operation string, steps []usecase.StepResult) {
	for _, step := range usecase.FailedSecondary(steps) {
		metrics.IncSecondaryWriteFailure(operation, step)
	}
}

// ---- payments ----

type submitPaymentRequest struct {
	CelebrityID    string           `json:"celebrityId"`
	PhoneNumber    string           `json:"phoneNumber"`
	MpesaCode      string           `json:"mpesaCode"`
	Amount         *decimal.Decimal `json:"amount"`
	Tier           string           `json:"tier"`
	Duration       string           `json:"duration"`
	ExpectedAmount *decimal.Decimal `json:"expectedAmount"`
}

type submitPaymentResponse struct {
	envelope
	Payment       *model.PaymentRecord `json:"payment"`
	PaymentStatus model.PaymentStatus  `json:"payment_status"`
	CreditBalance decimal.Decimal      `json:"credit_balance"`
	Warning       string               `json:"warning,omitempty"`
	Steps         []usecase.StepResult `json:"steps"`
}

func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req submitPaymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if s.deps.Limiter != nil && s.cfg.SubmitRateLimit > 0 && strings.TrimSpace(req.PhoneNumber) != "" {
		ok, err := s.deps.Limiter.Allow(ctx, red.SubmissionKey(strings.TrimSpace(req.PhoneNumber)), s.cfg.SubmitRateLimit, time.Minute)
		switch {
		case err != nil:
			l.Warn().Err(err).Msg("rate limiter unavailable; allowing submission")
		case !ok:
			metrics.IncRateLimited("payments")
			writeError(w, domain.ErrRateLimited)
			return
		}
	}

	res, err := s.deps.Payments.Submit(ctx, usecase.SubmitPaymentInput{
		CelebrityID:    req.CelebrityID,
		PhoneNumber:    req.PhoneNumber,
		ReferenceCode:  req.MpesaCode,
		Amount:         req.Amount,
		Tier:           req.Tier,
		Duration:       req.Duration,
		ExpectedAmount: req.ExpectedAmount,
	})
	if err != nil {
		metrics.IncPaymentSubmission("rejected")
		if statusFor(err) == http.StatusInternalServerError {
			l.Error().Err(err).Msg("payment submission failed")
		}
		writeError(w, err)
		return
	}
	metrics.IncPaymentSubmission(string(res.Payment.Status))
	recordSecondaryFailures("payment_submission", res.Steps)

	writeJSON(w, http.StatusOK, submitPaymentResponse{
		envelope:      envelope{Success: true, Message: "Payment submitted for verification"},
		Payment:       redactedPayment(res.Payment, s.dev),
		PaymentStatus: res.Payment.Status,
		CreditBalance: res.Payment.CreditBalance,
		Warning:       res.Warning,
		Steps:         res.Steps,
	})
}

// redactedPayment masks the payer's phone number outside dev mode.
func redactedPayment(p *model.PaymentRecord, dev bool) *model.PaymentRecord {
	if p == nil {
		return nil
	}
	cp := *p
	cp.PhoneNumber = logging.Redact(p.PhoneNumber, dev)
	return &cp
}

type verifyPaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

type verifyPaymentResponse struct {
	envelope
	IsUnderpaid     bool                      `json:"isUnderpaid"`
	AlreadyVerified bool                      `json:"alreadyVerified"`
	Payment         *model.PaymentRecord      `json:"payment,omitempty"`
	Subscription    *model.SubscriptionRecord `json:"subscription,omitempty"`
	Steps           []usecase.StepResult      `json:"steps,omitempty"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req verifyPaymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Payments.Verify(ctx, req.PaymentID, adminFrom(ctx))
	if err != nil {
		metrics.IncPaymentVerification("failed")
		status, env := errorEnvelope(err)
		if status == http.StatusInternalServerError {
			l.Error().Err(err).Str("payment_id", req.PaymentID).Msg("payment verification failed")
		}
		body := verifyPaymentResponse{envelope: env}
		if res != nil {
			body.Message = res.Message
			body.IsUnderpaid = res.IsUnderpaid
			body.AlreadyVerified = res.AlreadyVerified
			body.Steps = res.Steps
		}
		writeJSON(w, status, body)
		return
	}

	switch {
	case res.AlreadyVerified:
		metrics.IncPaymentVerification("already_verified")
	case res.IsUnderpaid:
		metrics.IncPaymentVerification("underpaid")
	case res.Activated:
		metrics.IncPaymentVerification("activated")
	default:
		metrics.IncPaymentVerification("verified")
	}
	recordSecondaryFailures("payment_verification", res.Steps)

	writeJSON(w, http.StatusOK, verifyPaymentResponse{
		envelope:        envelope{Success: true, Message: res.Message},
		IsUnderpaid:     res.IsUnderpaid,
		AlreadyVerified: res.AlreadyVerified,
		Payment:         redactedPayment(res.Payment, s.dev),
		Subscription:    res.Subscription,
		Steps:           res.Steps,
	})
}

type listPaymentsResponse struct {
	envelope
	Data  []*model.PaymentRecord `json:"data"`
	Limit int                    `json:"limit"`
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verified := false
	if v := q.Get("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, domain.NewValidationError("verified", "must be true or false"))
			return
		}
		verified = b
	}
	requested, _ := strconv.Atoi(q.Get("limit"))
	limit := usecase.ListLimit(requested)

	list, err := s.deps.Payments.List(r.Context(), verified, limit)
	if err != nil {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Msg("list payments failed")
		writeError(w, err)
		return
	}
	out := make([]*model.PaymentRecord, 0, len(list))
	for _, p := range list {
		out = append(out, redactedPayment(p, s.dev))
	}
	writeJSON(w, http.StatusOK, listPaymentsResponse{envelope: envelope{Success: true}, Data: out, Limit: limit})
}

// ---- admin actions ----

type promotionRequest struct {
	CelebrityID string           `json:"celebrityId"`
	OfferAmount *decimal.Decimal `json:"offerAmount"`
}

type promotionResponse struct {
	envelope
	SubscriptionEnd *time.Time                `json:"subscription_end,omitempty"`
	Payment         *model.PaymentRecord      `json:"payment,omitempty"`
	Subscription    *model.SubscriptionRecord `json:"subscription,omitempty"`
	Steps           []usecase.StepResult      `json:"steps,omitempty"`
}

func (s *Server) handlePromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req promotionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Promotions.Activate(ctx, req.CelebrityID, req.OfferAmount, adminFrom(ctx))
	if err != nil {
		metrics.IncPromotion("failed")
		status, env := errorEnvelope(err)
		if status == http.StatusInternalServerError {
			l.Error().Err(err).Str("celebrity_id", req.CelebrityID).Msg("promotional activation failed")
		}
		body := promotionResponse{envelope: env}
		if res != nil {
			body.Message = res.Message
			body.Steps = res.Steps
		}
		writeJSON(w, status, body)
		return
	}
	metrics.IncPromotion("activated")
	recordSecondaryFailures("promotional_activation", res.Steps)

	body := promotionResponse{
		envelope:     envelope{Success: true, Message: res.Message},
		Payment:      res.Payment,
		Subscription: res.Subscription,
		Steps:        res.Steps,
	}
	if res.Subscription != nil {
		end := res.Subscription.End
		body.SubscriptionEnd = &end
	}
	writeJSON(w, http.StatusOK, body)
}

type forceExpireRequest struct {
	CelebrityIDs []string `json:"celebrityIds"`
}

type forceExpireResponse struct {
	envelope
	Requested            int                  `json:"requested"`
	SubscriptionsExpired int64                `json:"subscriptions_expired"`
	ProfilesUnlisted     int64                `json:"profiles_unlisted"`
	Steps                []usecase.StepResult `json:"steps,omitempty"`
}

func (s *Server) handleForceExpire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var req forceExpireRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Expiry.ForceExpire(ctx, req.CelebrityIDs, adminFrom(ctx))
	if err != nil {
		status, env := errorEnvelope(err)
		if status == http.StatusInternalServerError {
			l.Error().Err(err).Int("requested", len(req.CelebrityIDs)).Msg("forced expiry failed")
		}
		body := forceExpireResponse{envelope: env}
		if res != nil {
			body.Message = res.Message
			body.Requested = res.Requested
			body.SubscriptionsExpired = res.SubscriptionsExpired
			body.ProfilesUnlisted = res.ProfilesUnlisted
			body.Steps = res.Steps
			metrics.AddForcedExpiries(res.SubscriptionsExpired)
		}
		writeJSON(w, status, body)
		return
	}
	metrics.AddForcedExpiries(res.SubscriptionsExpired)

	writeJSON(w, http.StatusOK, forceExpireResponse{
		envelope:             envelope{Success: true, Message: res.Message},
		Requested:            res.Requested,
		SubscriptionsExpired: res.SubscriptionsExpired,
		ProfilesUnlisted:     res.ProfilesUnlisted,
		Steps:                res.Steps,
	})
}

// ---- catalog and status ----

type pricingListResponse struct {
	envelope
	Data []*model.PriceEntry `json:"data"`
}

func (s *Server) handleListPricing(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Pricing.List(r.Context())
	if err != nil {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Msg("list pricing failed")
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*model.PriceEntry{}
	}
	writeJSON(w, http.StatusOK, pricingListResponse{envelope: envelope{Success: true}, Data: list})
}

type setPriceRequest struct {
	Tier     string           `json:"tier"`
	Duration string           `json:"duration"`
	Price    *decimal.Decimal `json:"price"`
}

type setPriceResponse struct {
	envelope
	Entry *model.PriceEntry `json:"entry"`
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Price == nil {
		writeError(w, domain.NewValidationError("price", "is required"))
		return
	}
	e, err := s.deps.Pricing.Set(r.Context(), req.Tier, req.Duration, *req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setPriceResponse{envelope: envelope{Success: true, Message: "Price updated"}, Entry: e})
}

type subscriptionStatusResponse struct {
	envelope
	*usecase.SubscriptionStatus
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.deps.Subscriptions.Status(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionStatusResponse{envelope: envelope{Success: true}, SubscriptionStatus: st})
}

type statsResponse struct {
	envelope
	*usecase.Totals
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.deps.Stats.Totals(r.Context())
	if err != nil {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Msg("stats failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{envelope: envelope{Success: true}, Totals: totals})
}
