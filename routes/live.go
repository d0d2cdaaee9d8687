package routes

import (
	"context"
	"net/http"
	"sync"

	"rag-visualizer-backend/internal/config"
	"rag-visualizer-backend/internal/logger"
	"rag-visualizer-backend/internal/telemetry"
	"rag-visualizer-backend/models"
	"rag-visualizer-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsEmitter serializes frame writes to one websocket connection. The
// session's progress goroutine and the stage observer both write, so
// the mutex is required.
type wsEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (e *wsEmitter) Emit(event string, data interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.WriteJSON(models.ServerFrame{Event: event, Data: data})
}

// SetupLiveRoutes registers the websocket endpoint that streams demo
// pipeline events to connected clients.
func SetupLiveRoutes(router *gin.Engine, cfg *config.Config, orchestrator *services.Orchestrator, metrics *telemetry.Metrics) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if !cfg.IsProduction() {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range cfg.CORSOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	sessionCfg := services.SessionConfig{
		IndexingLimit:    cfg.IndexingDemoLimit,
		QueryLimit:       cfg.QueryDemoLimit,
		RateWindow:       cfg.DemoRateWindow,
		StageDelay:       cfg.StageDelay,
		ProgressInterval: cfg.ProgressInterval,
	}

	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("Websocket upgrade failed", "error", err.Error())
			return
		}

		metrics.RecordConnection(c.Request.Context())
		session := services.NewConnectionSession(orchestrator, &wsEmitter{conn: conn}, sessionCfg, metrics)
		logger.Info("Live connection opened", "connection", session.ID, "remote", conn.RemoteAddr().String())

		defer func() {
			session.Close()
			conn.Close()
			logger.Info("Live connection closed", "connection", session.ID)
		}()

		for {
			var frame models.ClientFrame
			if err := conn.ReadJSON(&frame); err != nil {
				// Normal close or network failure; either way the
				// session state is discarded.
				return
			}

			// Triggers run off the read loop so a slow demo does not
			// block disconnect detection. They deliberately use a
			// background context: disconnecting stops emission but
			// does not cancel provider calls already in flight.
			switch frame.Event {
			case models.EventStartIndexing:
				go session.StartIndexing(context.Background(), frame.Data.DocumentID)
			case models.EventStartQuery:
				go session.StartQuery(context.Background(), frame.Data.Question)
			default:
				logger.Debug("Unknown live event ignored", "connection", session.ID, "event", frame.Event)
			}
		}
	})
}
