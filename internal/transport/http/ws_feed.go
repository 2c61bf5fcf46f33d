package http

import (
	"log"
	"net/http"

	"personquiz/internal/app"
	"personquiz/internal/domain"

	"github.com/gorilla/websocket"
)

// LeaderboardFeed streams leaderboard snapshots over a websocket, one
// message per score submission. Meant for a big-screen display at the
// party that refreshes live as guests finish the quiz.
type LeaderboardFeed struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewLeaderboardFeed(service *app.QuizService) *LeaderboardFeed {
	return &LeaderboardFeed{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type feedMessage struct {
	Type        string                   `json:"type"`
	Leaderboard []domain.LeaderboardItem `json:"leaderboard"`
}

// ServeWS upgrades the request and pushes snapshots until the client
// disconnects. The first message is the current standing.
func (f *LeaderboardFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	updates, cancel, err := f.service.Subscribe(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	defer cancel()

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only notices the peer going away.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if snapshot == nil {
				snapshot = []domain.LeaderboardItem{}
			}
			if err := conn.WriteJSON(feedMessage{Type: "leaderboard", Leaderboard: snapshot}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-clientGone:
			return
		}
	}
}
