package vote

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lunchvote/lunchvote/internal/platform/httpx"
)

// Service is the mutation and snapshot contract the handler needs.
// *Gateway satisfies it.
type Service interface {
	Vote(ctx context.Context, person, restaurant string, checked bool) (VoteReceipt, error)
	OptOut(ctx context.Context, person string, checked bool) (OptOutReceipt, error)
	Menu(ctx context.Context, person string, menu Menu) (MenuReceipt, error)
	Snapshot() Snapshot
}

// RosterPort lists the active participant names.
type RosterPort interface {
	ActiveNames(ctx context.Context) ([]string, error)
}

// Handler serves the web API. All actions ride one GET endpoint with an
// action parameter, mirroring the script web app the board frontend
// already speaks.
type Handler struct {
	logger   *slog.Logger
	service  Service
	roster   RosterPort
	apiKey   string
	validate *validator.Validate
}

// NewHandler constructs the API handler. An empty apiKey disables the
// shared-secret check.
func NewHandler(logger *slog.Logger, service Service, roster RosterPort, apiKey string) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		roster:   roster,
		apiKey:   apiKey,
		validate: validator.New(),
	}
}

// MountRoutes attaches the API routes. The root endpoint dispatches on
// the action parameter for the existing board frontend; the named paths
// are aliases for the same handlers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.dispatch)
	r.Get("/state", h.guarded(h.handleState))
	r.Get("/people", h.guarded(h.handlePeople))
	r.Get("/vote", h.guarded(h.handleVote))
	r.Get("/opt_out", h.guarded(h.handleOptOut))
	r.Get("/menu", h.guarded(h.handleMenu))
}

func (h *Handler) guarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			httpx.Fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

type voteCommand struct {
	Person     string `validate:"required"`
	Restaurant string `validate:"required"`
	Checked    bool
}

type optOutCommand struct {
	Person  string `validate:"required"`
	Checked bool
}

type menuCommand struct {
	Person   string `validate:"required"`
	MenuName string
	Price    *int64
	Note     string
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		httpx.Fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	action := strings.ToLower(r.URL.Query().Get("action"))
	if action == "" {
		action = "state"
	}

	switch action {
	case "state":
		h.handleState(w, r)
	case "people":
		h.handlePeople(w, r)
	case "vote":
		h.handleVote(w, r)
	case "opt_out":
		h.handleOptOut(w, r)
	case "menu":
		h.handleMenu(w, r)
	default:
		httpx.Fail(w, http.StatusBadRequest, "unknown action: "+action)
	}
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}
	key := r.URL.Query().Get("key")
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) == 1
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	httpx.OK(w, struct {
		OK bool `json:"ok"`
		Snapshot
	}{OK: true, Snapshot: h.service.Snapshot()})
}

func (h *Handler) handlePeople(w http.ResponseWriter, r *http.Request) {
	names, err := h.roster.ActiveNames(r.Context())
	if err != nil {
		h.logger.Error("list active people", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.OK(w, struct {
		OK     bool     `json:"ok"`
		People []string `json:"people"`
	}{OK: true, People: names})
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmd := voteCommand{
		Person:     strings.TrimSpace(q.Get("person")),
		Restaurant: strings.TrimSpace(q.Get("restaurant")),
		Checked:    parseChecked(q.Get("checked")),
	}
	if err := h.validate.Struct(cmd); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "person and restaurant parameters are required")
		return
	}

	receipt, err := h.service.Vote(r.Context(), cmd.Person, cmd.Restaurant, cmd.Checked)
	if err != nil {
		h.respondError(w, "vote", err)
		return
	}
	httpx.OK(w, struct {
		OK         bool   `json:"ok"`
		Person     string `json:"person"`
		Restaurant string `json:"restaurant"`
		Checked    bool   `json:"checked"`
	}{true, receipt.Person, receipt.Restaurant, receipt.Checked})
}

func (h *Handler) handleOptOut(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmd := optOutCommand{
		Person:  strings.TrimSpace(q.Get("person")),
		Checked: parseChecked(q.Get("checked")),
	}
	if err := h.validate.Struct(cmd); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "person parameter is required")
		return
	}

	receipt, err := h.service.OptOut(r.Context(), cmd.Person, cmd.Checked)
	if err != nil {
		h.respondError(w, "opt_out", err)
		return
	}
	httpx.OK(w, struct {
		OK     bool   `json:"ok"`
		Person string `json:"person"`
		OptOut bool   `json:"optOut"`
	}{true, receipt.Person, receipt.OptOut})
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmd := menuCommand{
		Person:   strings.TrimSpace(q.Get("person")),
		MenuName: strings.TrimSpace(q.Get("menuName")),
		Note:     strings.TrimSpace(q.Get("note")),
	}
	if raw := strings.TrimSpace(q.Get("price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "price must be a whole number")
			return
		}
		cmd.Price = &price
	}
	if err := h.validate.Struct(cmd); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "person parameter is required")
		return
	}

	receipt, err := h.service.Menu(r.Context(), cmd.Person, Menu{Name: cmd.MenuName, Price: cmd.Price, Note: cmd.Note})
	if err != nil {
		h.respondError(w, "menu", err)
		return
	}
	httpx.OK(w, struct {
		OK       bool   `json:"ok"`
		Person   string `json:"person"`
		MenuName string `json:"menuName"`
		Price    *int64 `json:"price"`
		Note     string `json:"note"`
	}{true, receipt.Person, receipt.Menu.Name, receipt.Menu.Price, receipt.Menu.Note})
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrUnknownRestaurant):
		httpx.Fail(w, http.StatusBadRequest, "unknown restaurant")
	case errors.Is(err, ErrVoteLimit):
		httpx.Fail(w, http.StatusBadRequest, "vote limit reached")
	case errors.Is(err, ErrPastCutoff):
		httpx.Fail(w, http.StatusForbidden, "vote cutoff has passed")
	case errors.Is(err, ErrOptedOut):
		httpx.Fail(w, http.StatusForbidden, "opted-out people cannot enter a menu")
	case errors.Is(err, ErrUnknownPerson):
		httpx.Fail(w, http.StatusNotFound, "unknown person")
	case errors.Is(err, ErrLockTimeout):
		httpx.Fail(w, http.StatusServiceUnavailable, "busy, try again")
	default:
		h.logger.Error("handle "+action, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}

func parseChecked(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
