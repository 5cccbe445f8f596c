package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wintergreet/internal/gift"
	"wintergreet/internal/greeting"
	"wintergreet/internal/scene"
	"wintergreet/internal/viewmodel"
	"wintergreet/views"
)

const (
	sessionCookie = "wintergreet_session"
	defaultWidth  = 1024
	maxWidth      = 16384
)

type SceneHandler struct {
	store *greeting.Store
}

func NewSceneHandler(store *greeting.Store) *SceneHandler {
	return &SceneHandler{store: store}
}

func (h *SceneHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.scenePage)
	r.Get("/healthz", h.health)
	r.Route("/scene", func(r chi.Router) {
		r.Get("/gifts", h.giftsFragment)
		r.Post("/gifts/{id}", h.openGift)
		r.Post("/dismiss", h.dismiss)
		r.Get("/lights", h.lightsFragment)
		r.Post("/viewport", h.viewport)
		r.Post("/leave", h.leave)
	})
}

// RegisterStream mounts the SSE endpoint. It is kept apart from the other
// routes so request timeouts can skip it.
func (h *SceneHandler) RegisterStream(r chi.Router) {
	r.Get("/scene/stream", h.stream)
}

func (h *SceneHandler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// scenePage mounts a fresh scene. A previous session from the same browser
// is torn down first.
func (h *SceneHandler) scenePage(w http.ResponseWriter, r *http.Request) {
	if previous := sessionIDFromCookie(r); previous != "" {
		h.store.Close(previous)
	}
	width := clampWidth(parseInt(r.URL.Query().Get("w"), defaultWidth))
	sess := h.store.CreateSession(width)
	setSessionCookie(w, sess.ID)

	cfg := h.store.Config()
	snapshot := sess.Snapshot()
	data := viewmodel.ScenePage{
		Title: cfg.Greeting.Title,
		Greeting: viewmodel.Greeting{
			Icon:     cfg.Greeting.Icon,
			Title:    cfg.Greeting.Title,
			Subtitle: cfg.Greeting.Subtitle,
			Lines:    strings.Split(cfg.Greeting.Message, "\n"),
		},
		Snow:        toFlakes(snapshot.Snow),
		Stars:       toStars(snapshot.Stars),
		Lights:      toLightsFragment(snapshot.Lights),
		Gifts:       toGiftsFragment(snapshot),
		Music:       cfg.Assets.Music,
		Backgrounds: cfg.Assets.Backgrounds,
	}
	render(w, r, views.ScenePage(data))
}

func (h *SceneHandler) giftsFragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	render(w, r, views.GiftsFragment(toGiftsFragment(sess.Snapshot())))
}

func (h *SceneHandler) lightsFragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	render(w, r, views.LightsFragment(toLightsFragment(sess.Lights.Lights())))
}

func (h *SceneHandler) openGift(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	giftID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid gift id", http.StatusBadRequest)
		return
	}
	if err := h.store.OpenGift(sess.ID, giftID, time.Now().UTC()); err != nil {
		if errors.Is(err, gift.ErrUnknownGift) || errors.Is(err, greeting.ErrNoSession) {
			http.NotFound(w, r)
			return
		}
		log.Printf("open gift error session=%s gift=%d err=%v", sess.ID, giftID, err)
		http.Error(w, "failed to open gift", http.StatusInternalServerError)
		return
	}
	render(w, r, views.GiftsFragment(toGiftsFragment(sess.Snapshot())))
}

func (h *SceneHandler) dismiss(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	target := gift.ParseTarget(r.FormValue("target"))
	if _, err := h.store.Press(sess.ID, target); err != nil {
		http.NotFound(w, r)
		return
	}
	render(w, r, views.GiftsFragment(toGiftsFragment(sess.Snapshot())))
}

func (h *SceneHandler) viewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	width, err := strconv.Atoi(strings.TrimSpace(r.FormValue("width")))
	if err != nil || width < 0 {
		http.Error(w, "invalid width", http.StatusBadRequest)
		return
	}
	if err := h.store.Resize(sess.ID, clampWidth(width)); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *SceneHandler) leave(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromCookie(r); id != "" {
		h.store.Close(id)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SceneHandler) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	hub := h.store.Broadcaster(sess.ID)
	if hub == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendSnapshot := func(includeGifts bool, includeLights bool) {
		snapshot := sess.Snapshot()
		if includeGifts {
			writeSSE(w, greeting.EventGifts, renderToString(r, views.GiftsFragment(toGiftsFragment(snapshot))))
		}
		if includeLights {
			writeSSE(w, greeting.EventLights, renderToString(r, views.LightsFragment(toLightsFragment(snapshot.Lights))))
		}
		flusher.Flush()
	}

	sendSnapshot(true, true)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}
			sess.Touch(time.Now().UTC())
			switch event {
			case greeting.EventGifts:
				sendSnapshot(true, false)
			case greeting.EventLights:
				sendSnapshot(false, true)
			}
		case <-keepAlive.C:
			sess.Touch(time.Now().UTC())
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (h *SceneHandler) session(r *http.Request) (*greeting.Session, bool) {
	id := sessionIDFromCookie(r)
	if id == "" {
		return nil, false
	}
	return h.store.GetSession(id)
}

func sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clampWidth(width int) int {
	if width < 0 {
		return 0
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}

func toFlakes(particles []scene.Particle) []viewmodel.Flake {
	out := make([]viewmodel.Flake, 0, len(particles))
	for _, p := range particles {
		out = append(out, viewmodel.Flake{
			ID:       p.ID,
			Left:     p.X,
			Duration: p.Duration,
			Delay:    p.Delay,
			Opacity:  p.Opacity,
			Size:     p.Size,
		})
	}
	return out
}

func toStars(particles []scene.Particle) []viewmodel.Star {
	out := make([]viewmodel.Star, 0, len(particles))
	for _, p := range particles {
		out = append(out, viewmodel.Star{
			ID:       p.ID,
			Left:     p.X,
			Top:      p.Y,
			Duration: p.Duration,
			Delay:    p.Delay,
			Opacity:  p.Opacity,
			Size:     p.Size,
		})
	}
	return out
}

func toLightsFragment(lights []scene.Light) viewmodel.LightsFragment {
	bulbs := make([]viewmodel.Bulb, 0, len(lights))
	for _, l := range lights {
		bulbs = append(bulbs, viewmodel.Bulb{
			ID:     l.ID,
			Left:   l.X,
			Offset: l.Offset,
			Color:  l.Color,
			Delay:  l.Delay,
		})
	}
	return viewmodel.LightsFragment{Bulbs: bulbs}
}

func toReward(r gift.Reward) viewmodel.Reward {
	return viewmodel.Reward{Title: r.Title, Message: r.Message, Icon: r.Icon}
}

func toGiftsFragment(snapshot greeting.Snapshot) viewmodel.GiftsFragment {
	gifts := make([]viewmodel.Gift, 0, len(snapshot.Gifts))
	for _, g := range snapshot.Gifts {
		gifts = append(gifts, viewmodel.Gift{
			ID:     g.Item.ID,
			Icon:   g.Item.Icon,
			Opened: g.State == gift.Opened,
			Reward: toReward(g.Item.Reward),
		})
	}
	data := viewmodel.GiftsFragment{
		Inline: snapshot.Variant == gift.VariantInline,
		Gifts:  gifts,
	}
	if snapshot.Selected != nil {
		reward := toReward(snapshot.Selected.Reward)
		data.Selected = &reward
	}
	return data
}
