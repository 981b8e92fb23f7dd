package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
	"github.com/cricklet/negachess/internal/session"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const framesPerSecond = 15

type UpdateToWeb struct {
	Fen           string   `json:"fen"`
	LastMove      string   `json:"lastMove"`
	Selection     string   `json:"selection"`
	PossibleMoves []string `json:"possibleMoves"`
	Player        string   `json:"player"`
	Searching     bool     `json:"searching"`
	Outcome       string   `json:"outcome"`
	Error         string   `json:"error,omitempty"`
}

func (u UpdateToWeb) String() string {
	return fmt.Sprint("UpdateToWeb: ", u.Fen, ", ", u.LastMove, ", ", u.Selection, ", ", u.PossibleMoves)
}

type MessageFromWeb struct {
	NewFen      *string `json:"newFen"`
	WhitePlayer *string `json:"whitePlayer"`
	BlackPlayer *string `json:"blackPlayer"`
	Click       *string `json:"click"`
	Move        *string `json:"move"`
	Undo        *bool   `json:"undo"`
	Reset       *bool   `json:"reset"`
}

func (u MessageFromWeb) String() string {
	if u.NewFen != nil {
		return fmt.Sprint("MessageFromWeb NewFen: ", *u.NewFen)
	}
	if u.WhitePlayer != nil {
		return fmt.Sprint("MessageFromWeb WhitePlayer: ", *u.WhitePlayer)
	}
	if u.BlackPlayer != nil {
		return fmt.Sprint("MessageFromWeb BlackPlayer: ", *u.BlackPlayer)
	}
	if u.Click != nil {
		return fmt.Sprint("MessageFromWeb Click: ", *u.Click)
	}
	if u.Move != nil {
		return fmt.Sprint("MessageFromWeb Move: ", *u.Move)
	}
	if u.Undo != nil {
		return "MessageFromWeb Undo"
	}
	if u.Reset != nil {
		return "MessageFromWeb Reset"
	}
	return "MessageFromWeb unknown"
}

type SearchRequest struct {
	Fen   string `json:"fen"`
	Depth *int   `json:"depth"`
}

type SearchResponse struct {
	BestMove string `json:"bestMove"`
	Fallback bool   `json:"fallback"`
}

type server struct {
	options  session.SessionOptions
	upgrader websocket.Upgrader
	logger   Logger
}

func newRouter(s *server) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.ws)
	router.HandleFunc("/api/search", s.search).Methods(http.MethodPost)
	router.HandleFunc("/api/moves/{square}", s.moves).Methods(http.MethodGet)
	return router
}

// connection is shared between the read loop, the tick loop and the search
// workers' loggers. lock guards the session; writeLock guards the websocket.
type connection struct {
	lock    sync.Mutex
	session *session.Session

	writeLock sync.Mutex
	conn      *websocket.Conn
}

func (c *connection) write(v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	_ = c.conn.WriteMessage(websocket.TextMessage, bytes)
}

func (c *connection) log(message string) {
	c.write([]string{message})
}

func (c *connection) update(err Error) {
	s := c.session
	update := UpdateToWeb{
		Fen:           s.Position().Fen(),
		Player:        s.Position().Player().String(),
		Searching:     s.Searching(),
		Outcome:       s.Outcome(),
		PossibleMoves: []string{},
	}
	if lastMove := s.Position().LastMove(); lastMove.HasValue() {
		update.LastMove = lastMove.Value().String()
	}
	if selection := s.Selection(); selection.HasValue() {
		update.Selection = StringFromBoardIndex(selection.Value())
		update.PossibleMoves = MapSlice(s.Highlights(), StringFromBoardIndex)
	}
	if !IsNil(err) {
		update.Error = err.Error()
	}
	c.write(update)
}

func (c *connection) handleMessage(bytes []byte) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var message MessageFromWeb
	err := Wrap(json.Unmarshal(bytes, &message))
	if !IsNil(err) {
		c.update(err)
		return
	}
	c.session.Logger.Println("received", message)

	setPlayer := func(player Player, kind string) Error {
		k, err := session.PlayerKindFromString(kind)
		if IsNil(err) {
			c.session.SetPlayerKind(player, k)
		}
		return err
	}

	switch {
	case message.NewFen != nil:
		err = c.session.Load(*message.NewFen)
	case message.WhitePlayer != nil:
		err = setPlayer(White, *message.WhitePlayer)
	case message.BlackPlayer != nil:
		err = setPlayer(Black, *message.BlackPlayer)
	case message.Click != nil:
		_, err = c.session.Click(*message.Click)
	case message.Move != nil:
		_, err = c.session.PlayMove(*message.Move)
	case message.Undo != nil:
		err = c.session.Undo()
	case message.Reset != nil:
		err = c.session.Reset()
	}

	c.update(err)
}

func (c *connection) tick() Error {
	c.lock.Lock()
	defer c.lock.Unlock()

	searching := c.session.Searching()
	move, err := c.session.Tick()
	if !IsNil(err) {
		return err
	}
	if move.HasValue() || searching != c.session.Searching() {
		c.update(NilError)
	}
	return NilError
}

func (s *server) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	c := &connection{conn: conn}

	options := s.options
	options.Logger = FuncLogger(func(message string) {
		c.log(message)
	})
	c.session, err = session.NewSession(options)
	if !IsNil(err) {
		s.logger.Println("session:", err)
		return
	}

	c.lock.Lock()
	c.update(NilError)
	c.lock.Unlock()

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(time.Second / framesPerSecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				err := c.tick()
				if !IsNil(err) {
					s.logger.Println("tick:", err)
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.logger.Println("read:", err)
			return
		}
		c.handleMessage(message)
	}
}

func writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJson(w, status, map[string]string{"error": err.Error()})
}

func positionFromRequest(fen string) (*game.Position, Error) {
	if fen == "" {
		return game.NewPosition(), NilError
	}
	return game.PositionFromFen(fen)
}

// search runs one engine search through the same shim the sessions use, and
// gives up if the client goes away.
func (s *server) search(w http.ResponseWriter, r *http.Request) {
	var request SearchRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, perr := positionFromRequest(request.Fen)
	if !IsNil(perr) {
		writeError(w, http.StatusBadRequest, perr)
		return
	}

	options := s.options.Search
	if request.Depth != nil {
		if *request.Depth < 0 || *request.Depth > 6 {
			writeError(w, http.StatusBadRequest, Errorf("depth must be between 0 and 6"))
			return
		}
		options.Depth = *request.Depth
	}

	moves := p.LegalMoves()
	if len(moves) == 0 {
		writeError(w, http.StatusUnprocessableEntity, Errorf("no legal moves in %v", p.Fen()))
		return
	}

	handle := runner.NewInProcessLauncher(options).StartSearch(p, moves)
	select {
	case <-r.Context().Done():
		return
	case <-handle.Done():
	}

	result, perr := handle.Poll()
	if !IsNil(perr) {
		writeError(w, http.StatusInternalServerError, perr)
		return
	}

	seed := options.Seed.ValueOr(time.Now().UnixNano())
	move, perr := runner.ResolveMove(handle, moves, rand.New(rand.NewSource(seed)))
	if !IsNil(perr) {
		writeError(w, http.StatusInternalServerError, perr)
		return
	}

	writeJson(w, http.StatusOK, SearchResponse{
		BestMove: move.Value().String(),
		Fallback: result.IsEmpty(),
	})
}

func (s *server) moves(w http.ResponseWriter, r *http.Request) {
	p, err := positionFromRequest(r.URL.Query().Get("fen"))
	if !IsNil(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	moves, err := p.MovesForSelection(mux.Vars(r)["square"])
	if !IsNil(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJson(w, http.StatusOK, MapSlice(moves, game.Move.String))
}
