package controllers

import (
	"fmt"
	"io"
	"net/http"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/engine"
	"slotbook-service/internal/app/services/core/slot"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/requests"
	"slotbook-service/internal/pkg/dto/responses"
	"slotbook-service/internal/pkg/exceptions"
	"slotbook-service/internal/pkg/utils"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type SlotController struct {
	Log            *zap.Logger
	Engine         *engine.Engine
	Holds          contracts.HoldFinder
	InternalConfig *config.InternalConfig
}

// NewSlotController builds the controller. holds may be nil when no ledger is
// configured, then only live holds can be looked up.
func NewSlotController(logger *zap.Logger, eng *engine.Engine, holds contracts.HoldFinder, internalConfig *config.InternalConfig) *SlotController {
	return &SlotController{
		Log:            logger,
		Engine:         eng,
		Holds:          holds,
		InternalConfig: internalConfig,
	}
}

func (ctrl *SlotController) OpenPool(w http.ResponseWriter, r *http.Request) {
	var request requests.OpenPool
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	cfg, err := slot.ParseScheduleConfig(request.Schedule)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	key := models.PoolKey{Category: request.Category, ServiceID: request.ServiceID, Date: request.Date}
	if _, err := ctrl.Engine.OpenPool(r.Context(), key, cfg); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.writePool(w, key, constvars.StatusCreated, constvars.ResponsePoolOpened)
}

func (ctrl *SlotController) ClosePool(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	if _, _, err := ctrl.Engine.Snapshot(key); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Engine.ClosePool(key)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponsePoolClosed, key)
}

func (ctrl *SlotController) ListPools(w http.ResponseWriter, r *http.Request) {
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseSuccess, ctrl.Engine.Pools())
}

func (ctrl *SlotController) ListSlots(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.writePool(w, key, constvars.StatusOK, constvars.ResponseSlotsFetched)
}

// Reserve blocks until the hold is confirmed, rejected, timed out or the
// client goes away.
func (ctrl *SlotController) Reserve(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	var request requests.Reserve
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	hold, err := ctrl.Engine.ReserveSet(r.Context(), key, request.IDs())
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.ResponseReservationHeld, hold)
}

func (ctrl *SlotController) Release(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	slotID := chi.URLParam(r, constvars.URLParamSlotID)

	if err := ctrl.Engine.Release(r.Context(), key, slotID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseReservationReleased, nil)
}

func (ctrl *SlotController) ReserveBlock(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	var request requests.ReserveBlock
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	hold, err := ctrl.Engine.ReserveBlock(r.Context(), key, request.StartSlotID, request.Units)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.ResponseBlockHeld, hold)
}

// Suggest accepts ?limit=N and ?prefer=18:00,19:30.
func (ctrl *SlotController) Suggest(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get(constvars.QueryParamLimit); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			if err == nil {
				err = fmt.Errorf("limit must be positive, got %d", limit)
			}
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamValidation(err, constvars.QueryParamLimit))
			return
		}
	}

	var preferred []string
	if raw := r.URL.Query().Get(constvars.QueryParamPrefer); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				preferred = append(preferred, p)
			}
		}
	}

	suggestions, err := ctrl.Engine.Suggest(key, limit, preferred...)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseSuggestionsFetched, suggestions)
}

// GetHold falls back to the ledger for holds that already left the
// coordinator.
func (ctrl *SlotController) GetHold(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, constvars.URLParamHoldID)
	if hold, ok := ctrl.Engine.Hold(id); ok {
		utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseHoldFetched, hold)
		return
	}
	if ctrl.Holds == nil {
		utils.BuildErrorResponse(ctrl.Log, w, fmt.Errorf("%w: %s", exceptions.ErrUnknownHold, id))
		return
	}

	hold, err := ctrl.Holds.FindHold(r.Context(), id)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseHoldFetched, hold)
}

func (ctrl *SlotController) ListHolds(w http.ResponseWriter, r *http.Request) {
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseHoldsFetched, ctrl.Engine.Holds())
}

// Inbound lets a transport deliver messages over HTTP instead of a queue.
func (ctrl *SlotController) Inbound(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrReadBody(err))
		return
	}
	if err := ctrl.Engine.HandleInbound(r.Context(), raw); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.ResponseInboundAccepted, nil)
}

func (ctrl *SlotController) Health(w http.ResponseWriter, r *http.Request) {
	pools := ctrl.Engine.Pools()
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseHealthy, responses.Health{
		Status: constvars.ResponseHealthy,
		Pools:  len(pools),
		Holds:  len(ctrl.Engine.Holds()),
		Keys:   pools,
	})
}

func (ctrl *SlotController) writePool(w http.ResponseWriter, key models.PoolKey, code int, message string) {
	slots, version, err := ctrl.Engine.Snapshot(key)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, code, message, responses.PoolSlots{Key: key, Version: version, Slots: slots})
}

func poolKey(r *http.Request) (models.PoolKey, error) {
	key := models.PoolKey{
		Category:  chi.URLParam(r, constvars.URLParamCategory),
		ServiceID: chi.URLParam(r, constvars.URLParamServiceID),
		Date:      chi.URLParam(r, constvars.URLParamDate),
	}
	if err := utils.ValidateStruct(key); err != nil {
		return models.PoolKey{}, exceptions.ErrInputValidation(err)
	}
	return key, nil
}
