package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tradekit/lumen/internal/service"
	"go.uber.org/zap"
)

// BotHandler controls the bot loop and serves the event stream. mu guards the
// cancel func against racing start/stop/restart requests.
type BotHandler struct {
	botLoop       *service.BotLoop
	streamService *service.StreamService
	logger        *zap.Logger

	mu         sync.Mutex
	loopCancel context.CancelFunc
}

func NewBotHandler(botLoop *service.BotLoop, streamService *service.StreamService, logger *zap.Logger) *BotHandler {
	return &BotHandler{
		botLoop:       botLoop,
		streamService: streamService,
		logger:        logger,
	}
}

// GetStatus returns the loop state.
// GET /api/bot/status
func (h *BotHandler) GetStatus(c echo.Context) error {
	status := h.botLoop.Status()
	return c.JSON(http.StatusOK, status)
}

// Start schedules the loop.
// POST /api/bot/start
func (h *BotHandler) Start(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loopCancel != nil || h.botLoop.IsRunning() {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "bot is already running",
		})
	}

	h.launchLoop()
	h.logger.Info("bot loop started via API")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "bot started",
	})
}

// launchLoop starts the loop goroutine. Callers hold h.mu.
func (h *BotHandler) launchLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	h.loopCancel = cancel

	go func() {
		if err := h.botLoop.Start(ctx); err != nil {
			h.logger.Error("bot loop error", zap.Error(err))
		}
	}()
}

// Stop halts the loop.
// POST /api/bot/stop
func (h *BotHandler) Stop(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loopCancel == nil && !h.botLoop.IsRunning() {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "bot is not running",
		})
	}

	if err := h.haltLoop(); err != nil {
		return err
	}

	h.logger.Info("bot loop stopped via API")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "bot stopped",
	})
}

// haltLoop stops the loop and releases the cancel func. Callers hold h.mu.
func (h *BotHandler) haltLoop() error {
	if h.botLoop.IsRunning() {
		if err := h.botLoop.Stop(); err != nil {
			return err
		}
	}
	if h.loopCancel != nil {
		h.loopCancel()
		h.loopCancel = nil
	}
	return nil
}

// Restart stops then starts the loop.
// POST /api/bot/restart
func (h *BotHandler) Restart(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.haltLoop(); err != nil {
		return err
	}

	h.launchLoop()
	h.logger.Info("bot loop restarted via API")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "bot restarted",
	})
}

// Stream pushes bot events over SSE until the client disconnects.
// GET /api/stream
func (h *BotHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	events, cancel := h.streamService.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// Health is the liveness probe.
// GET /api/health
func (h *BotHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"bot_running": h.botLoop.IsRunning(),
		"subscribers": h.streamService.SubscriberCount(),
		"time":        time.Now(),
	})
}

// RegisterRoutes wires the bot endpoints. Control routes go on the guarded
// group.
func (h *BotHandler) RegisterRoutes(g *echo.Group, guarded *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/stream", h.Stream)

	bot := g.Group("/bot")
	bot.GET("/status", h.GetStatus)

	control := guarded.Group("/bot")
	control.POST("/start", h.Start)
	control.POST("/stop", h.Stop)
	control.POST("/restart", h.Restart)
}
