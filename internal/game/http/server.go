package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/betting"
	"github.com/radieske/party-bet/internal/game/domain"
	"github.com/radieske/party-bet/internal/game/engine"
	"github.com/radieske/party-bet/internal/game/round"
)

// Game é a superfície do Engine usada pela API
type Game interface {
	Snapshot(ctx context.Context) (round.Snapshot, error)
	StartGame(ctx context.Context, names []string) (round.Snapshot, error)
	Select(ctx context.Context, optionKey string) (round.Snapshot, error)
	SetAmount(ctx context.Context, amount string) (round.Snapshot, error)
	Confirm(ctx context.Context, optionKey, amount string) (round.Snapshot, error)
	Modify(ctx context.Context) (round.Snapshot, error)
	Skip(ctx context.Context) (round.Snapshot, error)
	AdvanceFromResult(ctx context.Context) (round.Snapshot, error)
	Restart(ctx context.Context) (round.Snapshot, error)
}

// EventLister lista o catálogo carregado
type EventLister interface {
	List() []domain.Event
}

// API expõe os comandos do jogo via REST e o stream de snapshots via WebSocket
type API struct {
	Log    *zap.Logger
	Game   Game
	Events EventLister
	WS     http.HandlerFunc // nil desabilita /ws

	OnRequest func(route string, status int) // métricas
}

// Router retorna o roteador HTTP com os endpoints do jogo
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v1/game", a.getGame)
	r.Post("/v1/game/start", a.start)
	r.Post("/v1/game/bet/select", a.selectOption)
	r.Post("/v1/game/bet/amount", a.setAmount)
	r.Post("/v1/game/bet/confirm", a.confirm)
	r.Post("/v1/game/bet/modify", a.simple("modify", a.Game.Modify))
	r.Post("/v1/game/bet/skip", a.simple("skip", a.Game.Skip))
	r.Post("/v1/game/result/advance", a.simple("result_advance", a.Game.AdvanceFromResult))
	r.Post("/v1/game/restart", a.simple("restart", a.Game.Restart))
	r.Get("/v1/events", a.listEvents)
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

type startReq struct {
	Names []string `json:"names"`
}

type selectReq struct {
	OptionKey string `json:"optionKey"`
}

type amountReq struct {
	Amount string `json:"amount"`
}

type confirmReq struct {
	OptionKey string `json:"optionKey"`
	Amount    string `json:"amount"`
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor traduz erros do jogo para status HTTP
func statusFor(err error) int {
	switch {
	case betting.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, round.ErrNoPlayers):
		return http.StatusBadRequest
	case errors.Is(err, round.ErrWrongView),
		errors.Is(err, round.ErrSessionActive),
		errors.Is(err, betting.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, engine.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (a *API) respond(w http.ResponseWriter, route string, snap round.Snapshot, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		if status == http.StatusInternalServerError {
			a.Log.Error("game command failed", zap.String("route", route), zap.Error(err))
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	} else {
		writeJSON(w, status, snap)
	}
	if a.OnRequest != nil {
		a.OnRequest(route, status)
	}
}

func (a *API) badRequest(w http.ResponseWriter, route string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
	if a.OnRequest != nil {
		a.OnRequest(route, http.StatusBadRequest)
	}
}

func (a *API) getGame(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Game.Snapshot(r.Context())
	a.respond(w, "game", snap, err)
}

func (a *API) start(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "start")
		return
	}
	snap, err := a.Game.StartGame(r.Context(), req.Names)
	a.respond(w, "start", snap, err)
}

func (a *API) selectOption(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "select")
		return
	}
	snap, err := a.Game.Select(r.Context(), req.OptionKey)
	a.respond(w, "select", snap, err)
}

func (a *API) setAmount(w http.ResponseWriter, r *http.Request) {
	var req amountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "amount")
		return
	}
	snap, err := a.Game.SetAmount(r.Context(), req.Amount)
	a.respond(w, "amount", snap, err)
}

func (a *API) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "confirm")
		return
	}
	snap, err := a.Game.Confirm(r.Context(), req.OptionKey, req.Amount)
	a.respond(w, "confirm", snap, err)
}

// simple monta handlers de comandos sem corpo
func (a *API) simple(route string, cmd func(context.Context) (round.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cmd(r.Context())
		a.respond(w, route, snap, err)
	}
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Events.List())
	if a.OnRequest != nil {
		a.OnRequest("events", http.StatusOK)
	}
}
