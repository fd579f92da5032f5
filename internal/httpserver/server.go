package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"hypebot/internal/ports/input"
	"hypebot/internal/scheduler"
)

// Pinger reports whether the event store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusLister lists stored events with their derived lifecycle state.
type StatusLister interface {
	ListStatuses(ctx context.Context, now time.Time) ([]input.EventStatus, error)
}

// TaskLister lists the precision tasks still queued in memory.
type TaskLister interface {
	Pending() []scheduler.TaskInfo
}

type eventView struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Organizer    string    `json:"organizer"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	MessageID    string    `json:"message_id"`
	ReminderSent bool      `json:"reminder_sent"`
	State        string    `json:"state"`
	Next         string    `json:"next"`
}

type taskView struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	FireAt time.Time `json:"fire_at"`
}

// NewRouter wires the read-only status endpoints.
// /health: liveness, /ready: store reachable, /events and /scheduler/tasks:
// what the bot is tracking.
func NewRouter(lifecycle StatusLister, store Pinger, tasks TaskLister, now func() time.Time) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if now == nil {
		now = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/events", func(c *gin.Context) {
		statuses, err := lifecycle.ListStatuses(c.Request.Context(), now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]eventView, 0, len(statuses))
		for _, st := range statuses {
			out = append(out, eventView{
				ID:           st.Event.ID,
				Name:         st.Event.Name,
				Location:     st.Event.Location,
				Organizer:    st.Event.Organizer,
				ScheduledAt:  st.Event.ScheduledAt,
				MessageID:    st.Event.MessageID,
				ReminderSent: st.Event.ReminderSent != 0,
				State:        st.State.String(),
				Next:         st.Next.String(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"events": out})
	})

	r.GET("/scheduler/tasks", func(c *gin.Context) {
		pending := tasks.Pending()
		out := make([]taskView, 0, len(pending))
		for _, t := range pending {
			out = append(out, taskView{ID: t.ID, Name: t.Name, FireAt: t.FireAt})
		}
		c.JSON(http.StatusOK, gin.H{"tasks": out})
	})

	return r
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("status server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
