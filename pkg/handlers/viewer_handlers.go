package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
	"media-gallery/pkg/viewer"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// upgrader leaves CheckOrigin unset, so cross-origin pages are refused
var upgrader = websocket.Upgrader{}

// viewerResponse is returned by every viewer API call
type viewerResponse struct {
	ID     string                  `json:"id"`
	State  services.SessionState   `json:"state"`
	Events []services.SessionEvent `json:"events"`
}

// inputMessage is a key press or click sent by the gallery page
type inputMessage struct {
	Type   string `json:"type,omitempty"`
	Key    string `json:"key,omitempty"`
	Target string `json:"target,omitempty"`
	Index  int    `json:"index,omitempty"`
}

func respond(w http.ResponseWriter, status int, session *services.Session) {
	writeJSON(w, status, viewerResponse{
		ID:     session.ID,
		State:  session.State(),
		Events: session.Drain(),
	})
}

func lookupSession(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, err := services.Sessions().Get(chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "viewer session not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return session, true
}

// applyInput feeds one input message to a session's controller
func applyInput(session *services.Session, msg inputMessage) bool {
	if msg.Key != "" {
		return session.Controller.HandleKey(viewer.ParseKey(msg.Key))
	}
	return session.Controller.HandleClick(viewer.Click{
		Target: viewer.ParseClickTarget(msg.Target),
		Index:  msg.Index,
	})
}

// CreateViewerHandler starts a viewer session for a gallery. The page reports
// whether it can play video inline with ?inlineVideo=true.
func CreateViewerHandler(w http.ResponseWriter, r *http.Request) {
	gallery, err := services.GetGallery(galleryStub(r))
	if err != nil {
		writeError(w, http.StatusNotFound, "gallery not found")
		return
	}

	inlineVideo, _ := strconv.ParseBool(r.URL.Query().Get("inlineVideo"))
	session, err := services.Sessions().Create(gallery, inlineVideo)
	if errors.Is(err, models.ErrEmptyManifest) {
		writeError(w, http.StatusUnprocessableEntity, "gallery has no entries")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusCreated, session)
}

// ViewerStateHandler returns a session's state and pending events
func ViewerStateHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, session)
}

// ViewerKeyHandler applies a key press
func ViewerKeyHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req inputMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if key := viewer.ParseKey(req.Key); key == viewer.KeyNone {
		writeError(w, http.StatusBadRequest, "unknown key: "+req.Key)
		return
	}
	applyInput(session, inputMessage{Key: req.Key})
	respond(w, http.StatusOK, session)
}

// ViewerClickHandler applies a click
func ViewerClickHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var req inputMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !applyInput(session, inputMessage{Target: req.Target, Index: req.Index}) {
		writeError(w, http.StatusBadRequest, "unknown target: "+req.Target)
		return
	}
	respond(w, http.StatusOK, session)
}

// DeleteViewerHandler ends a session
func DeleteViewerHandler(w http.ResponseWriter, r *http.Request) {
	if err := services.Sessions().Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "viewer session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ViewerEventsHandler streams a session's events over a websocket. Input
// messages received on the socket are applied to the session.
func ViewerEventsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	store := services.Sessions()
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		store.Touch(session.ID)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg inputMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("session", session.ID).Msg("Websocket read")
				}
				return
			}
			store.Touch(session.ID)
			applyInput(session, msg)
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, open := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !open {
				conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Warn().Err(err).Str("session", session.ID).Msg("Websocket write")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
