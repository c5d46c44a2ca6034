// Package webhook receives GitHub push webhooks and turns pushes to the
// publishing branch into trigger events.
package webhook

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/thoreinstein/folio/internal/trigger"
)

// Path is the route the handler is mounted on.
const Path = "/hooks/push"

// MaxPayloadSize matches GitHub's webhook payload cap.
const MaxPayloadSize = 25 << 20

// Response is the JSON body of every reply.
type Response struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Response statuses.
const (
	StatusQueued  = "queued"
	StatusIgnored = "ignored"
	StatusPong    = "pong"
	StatusError   = "error"
)

// Handler validates webhook deliveries and notifies a trigger.
type Handler struct {
	notifier trigger.Notifier
	secret   []byte
	branch   string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithSecret enables X-Hub-Signature-256 verification.
func WithSecret(secret string) Option {
	return func(h *Handler) {
		if secret != "" {
			h.secret = []byte(secret)
		}
	}
}

// WithBranch sets the branch whose pushes publish. Defaults to "main".
func WithBranch(branch string) Option {
	return func(h *Handler) {
		if branch != "" {
			h.branch = branch
		}
	}
}

// WithRateLimit limits accepted deliveries to r per second with bursts of
// burst. Excess deliveries get 429.
func WithRateLimit(r float64, burst int) Option {
	return func(h *Handler) {
		if r > 0 && burst > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New returns a Handler forwarding accepted pushes to notifier.
func New(notifier trigger.Notifier, opts ...Option) *Handler {
	h := &Handler{
		notifier: notifier,
		branch:   "main",
		limiter:  rate.NewLimiter(rate.Limit(1), 5),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Response{Status: StatusError, Reason: "method not allowed"})
		return
	}

	if !h.limiter.Allow() {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter(h.limiter.Limit())))
		writeJSON(w, http.StatusTooManyRequests, Response{Status: StatusError, Reason: "rate limited"})
		return
	}

	delivery := github.DeliveryID(r)
	r.Body = http.MaxBytesReader(w, r.Body, MaxPayloadSize)
	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		h.logger.Warn("rejected webhook delivery", "delivery", delivery, "error", err)
		writeJSON(w, http.StatusUnauthorized, Response{Status: StatusError, Reason: "invalid payload or signature"})
		return
	}

	eventType := github.WebHookType(r)
	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Status: StatusError, Reason: "unsupported event"})
		return
	}

	switch e := event.(type) {
	case *github.PingEvent:
		writeJSON(w, http.StatusOK, Response{Status: StatusPong})
	case *github.PushEvent:
		h.handlePush(w, delivery, e)
	default:
		writeJSON(w, http.StatusAccepted, Response{Status: StatusIgnored, Reason: "event " + eventType})
	}
}

func (h *Handler) handlePush(w http.ResponseWriter, delivery string, e *github.PushEvent) {
	ref := e.GetRef()
	branch, ok := strings.CutPrefix(ref, "refs/heads/")
	if !ok || branch != h.branch {
		writeJSON(w, http.StatusAccepted, Response{Status: StatusIgnored, Reason: "ref " + ref})
		return
	}
	if e.GetDeleted() {
		writeJSON(w, http.StatusAccepted, Response{Status: StatusIgnored, Reason: "branch deleted"})
		return
	}

	h.logger.Info("push received",
		"delivery", delivery,
		"ref", ref,
		"commit", e.GetAfter(),
		"repository", e.GetRepo().GetFullName(),
	)
	h.notifier.Notify(trigger.Event{
		Source: "webhook",
		Ref:    ref,
		Commit: e.GetAfter(),
		Detail: delivery,
		Time:   time.Now(),
	})
	writeJSON(w, http.StatusAccepted, Response{Status: StatusQueued})
}

// retryAfter returns the whole seconds until the limiter refills one token.
func retryAfter(l rate.Limit) int {
	if l <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l))))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
