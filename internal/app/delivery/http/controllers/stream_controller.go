package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/responses"
	"slotbook-service/internal/pkg/exceptions"
	"slotbook-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	streamEventSnapshot = "snapshot"
	streamEventUpdate   = "update"
)

// Stream serves pool changes as server-sent events. The first event is the
// full snapshot, later ones carry only the changed slots. The subscription
// and its refresher live as long as the client connection.
func (ctrl *SlotController) Stream(w http.ResponseWriter, r *http.Request) {
	key, err := poolKey(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrStreamingUnsupported(errors.New("no http.Flusher")))
		return
	}

	ctx := r.Context()
	sub, err := ctrl.Engine.Subscribe(ctx, key)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	defer ctrl.Engine.Unsubscribe(sub)

	stop := ctrl.Engine.RefreshEvery(ctx, key, ctrl.refreshInterval())
	defer stop()

	log := ctrl.Log.With(
		zap.String(constvars.LoggingMethodKey, "controllers.SlotController.Stream"),
		zap.String(constvars.LoggingPoolKey, key.String()),
		zap.String(constvars.LoggingSubscriptionIDKey, sub.ID()),
	)

	w.Header().Set(constvars.HeaderContentType, constvars.MIMETextEventStream)
	w.Header().Set(constvars.HeaderCacheControl, "no-cache")
	w.WriteHeader(constvars.StatusOK)

	slots, version, err := ctrl.Engine.Snapshot(key)
	if err != nil {
		return
	}
	if err := writeEvent(w, streamEventSnapshot, key, version, slots); err != nil {
		log.Warn("failed to write snapshot", zap.Error(err))
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			stats := sub.Stats()
			log.Info("stream closed by client",
				zap.Uint64("sent", stats.Sent),
				zap.Uint64("dropped", stats.Dropped),
			)
			return
		case ev, ok := <-sub.Events():
			if !ok {
				log.Info("stream closed with pool")
				return
			}
			if err := writeEvent(w, streamEventUpdate, ev.Key, ev.Version, ev.Slots); err != nil {
				log.Warn("failed to write update", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func (ctrl *SlotController) refreshInterval() time.Duration {
	if ctrl.InternalConfig == nil {
		return 0
	}
	return ctrl.InternalConfig.Engine.RefreshInterval
}

func writeEvent(w http.ResponseWriter, name string, key models.PoolKey, version uint64, slots []models.Slot) error {
	data, err := json.Marshal(responses.PoolSlots{Key: key, Version: version, Slots: slots})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
