package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/gorilla/websocket"
)

// serveWS authenticates the access_token query parameter, upgrades the
// connection and streams JSON events until either side goes away.
func (s *HTTPServer) serveWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	token := q.Get(common.AccessTokenHeaderName)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	sess, err := s.users.Authenticate(ctx, token)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	if err := s.rules.Police(sess.Role, policy.FeedWatch); err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	collections, err := s.readableCollections(sess.Role, q.Get("collections"))
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	wc, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(ctx, "ws upgrade failed", "error", err)
		return
	}

	sub := s.feed.Subscribe(collections...)
	defer sub.Close()

	s.logger.Info(ctx, "ws watch started", "user_id", sess.UserID, "collections", collections)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer cancel()
		s.read(wc)
	}()

	if err := s.write(ctx, wc, sub); err != nil {
		s.logger.Debug(ctx, "ws write stopped", "user_id", sess.UserID, "error", err)
	}
}

// read drains client frames so control messages are processed; it returns
// once the peer closes the connection.
func (s *HTTPServer) read(wc *websocket.Conn) {
	for {
		if _, _, err := wc.NextReader(); err != nil {
			return
		}
	}
}

func (s *HTTPServer) write(ctx context.Context, wc *websocket.Conn, sub *feed.Subscription) error {
	defer wc.Close()

	t := time.NewTicker(s.pingInterval)
	defer t.Stop()

	if err := writeEvent(wc, marker(feed.OpSynced)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = wc.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return nil
		case e, ok := <-sub.C:
			if !ok {
				_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				_ = wc.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return nil
			}
			if sub.Lagged() {
				if err := writeEvent(wc, marker(feed.OpLagged)); err != nil {
					return err
				}
			}
			if err := writeEvent(wc, e); err != nil {
				return err
			}
		case <-t.C:
			_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func writeEvent(wc *websocket.Conn, e feed.Event) error {
	_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
	return wc.WriteJSON(e)
}

func marker(op feed.Op) feed.Event {
	return feed.Event{Op: op, At: time.Now().UTC()}
}
