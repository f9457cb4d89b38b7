// Quizbox trivia session
//
// One host screen drives a shared sequence of trivia questions; any number
// of players join from their own devices and answer against the clock.
//
// Features:
// - Single shared session per process, host and players over /ws
// - Host screen controls pacing: start, advance, reset
// - Phases: lobby -> question -> answer_reveal -> leaderboard -> next/finished
// - One answer per player per question; later submissions are ignored
// - Scores decay with answer time and grow with consecutive-correct streaks
// - Players keep their score and ranking even if their connection drops
// - Hosts see aggregate results; players get personalized result frames
// - Stale or unauthorized clicks are dropped silently, never faulted
// - In-browser QR button to share the join URL, backed by go-qrcode

package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Phase is the session's current stage. Host "next" clicks walk the
// question/reveal/leaderboard cycle; reset returns to the lobby from
// anywhere.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseQuestion    Phase = "question"
	PhaseReveal      Phase = "answer_reveal"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseFinished    Phase = "finished"
)

const maxNicknameLen = 20

// Player holds the data we store server-side. Records are never removed
// once created, so final rankings stay stable across disconnects.
type Player struct {
	ID            string
	Nickname      string
	Score         int
	Streak        int
	LastCorrect   *bool // nil until the player's first reveal
	LastPoints    int
	CurrentAnswer *int
	AnswerTime    time.Duration
}

type playerAnswer struct {
	choice  int
	elapsed time.Duration
}

type frame struct {
	client *Client
	msg    ClientMessage
}

// Game owns the session: the connection set, the player roster, the phase
// machine, and per-question answer collection. All mutation happens in the
// run loop, one inbound event at a time.
type Game struct {
	cfg       *Config
	catalog   []Question
	timeLimit time.Duration

	clients map[*Client]bool
	players []*Player // join order, which also fixes ranking tie-breaks
	byID    map[string]*Player

	phase         Phase
	questionIndex int
	questionStart time.Time // zero outside the question phase
	answers       map[string]playerAnswer
	playerSeq     int

	register chan *Client
	unreg    chan *Client
	inbound  chan frame

	mu  sync.RWMutex
	now func() time.Time
}

func newGame(cfg *Config, catalog []Question) *Game {
	return &Game{
		cfg:       cfg,
		catalog:   catalog,
		timeLimit: cfg.timeLimit,
		clients:   make(map[*Client]bool),
		byID:      make(map[string]*Player),
		phase:     PhaseLobby,
		answers:   make(map[string]playerAnswer),
		register:  make(chan *Client),
		unreg:     make(chan *Client),
		inbound:   make(chan frame),
		now:       time.Now,
	}
}

func (g *Game) run() {
	for {
		select {
		case c := <-g.register:
			g.handleRegister(c)

		case c := <-g.unreg:
			g.handleUnregister(c)

		case f := <-g.inbound:
			g.handleMessage(f.client, f.msg)
		}
	}
}

func (g *Game) handleRegister(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clients[c] = true
}

// handleUnregister drops the connection but keeps any associated player
// record, so a disconnecting player does not lose their standing.
func (g *Game) handleUnregister(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.clients[c]; ok {
		delete(g.clients, c)
		close(c.send)
	}
}

func (g *Game) handleMessage(c *Client, msg ClientMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch msg.Type {
	case "host_join":
		c.isHost = true
		g.broadcastLobbyLocked()

	case "player_join":
		g.handlePlayerJoinLocked(c, msg)

	case "start_game":
		if !c.isHost || g.phase != PhaseLobby {
			return
		}
		if len(g.players) == 0 {
			g.sendLocked(c, ErrorMessage{Type: "error", Message: "Need at least one player"})
			return
		}
		g.questionIndex = 0
		logf(g.cfg, "GAMES: Host started game with %d players", len(g.players))
		g.broadcastLocked(GameStartedMessage{Type: "game_started"})
		g.sendQuestionLocked()

	case "reset_game":
		if !c.isHost {
			return
		}
		g.resetLocked()

	case "next":
		if !c.isHost {
			return
		}
		switch g.phase {
		case PhaseQuestion:
			g.revealAnswerLocked()
		case PhaseReveal:
			g.showLeaderboardLocked()
		case PhaseLeaderboard:
			g.questionIndex++
			if g.questionIndex >= len(g.catalog) {
				g.showFinishedLocked()
			} else {
				g.sendQuestionLocked()
			}
		}

	case "submit_answer":
		g.handleSubmitLocked(c, msg)
	}
}

func (g *Game) handlePlayerJoinLocked(c *Client, msg ClientMessage) {
	if g.phase != PhaseLobby {
		g.sendLocked(c, ErrorMessage{Type: "error", Message: "Game already in progress"})
		return
	}

	g.playerSeq++
	player := &Player{
		ID:       fmt.Sprintf("p%d", g.playerSeq),
		Nickname: trimNickname(msg.Nickname),
	}
	g.players = append(g.players, player)
	g.byID[player.ID] = player
	c.playerID = player.ID

	logf(g.cfg, "GAMES: Player %q joined as %s", player.Nickname, player.ID)

	g.sendLocked(c, JoinedMessage{Type: "joined", PlayerID: player.ID})
	g.broadcastLobbyLocked()
}

// handleSubmitLocked records the first answer per player per question.
// Anything else (wrong phase, unknown participant, duplicate) is a silent
// no-op: the submitting UI retries are idempotent by design.
func (g *Game) handleSubmitLocked(c *Client, msg ClientMessage) {
	if g.phase != PhaseQuestion || c.playerID == "" || msg.AnswerIndex == nil {
		return
	}
	if _, answered := g.answers[c.playerID]; answered {
		return
	}

	var elapsed time.Duration
	if !g.questionStart.IsZero() {
		elapsed = g.now().Sub(g.questionStart)
	}

	g.answers[c.playerID] = playerAnswer{choice: *msg.AnswerIndex, elapsed: elapsed}

	if p, ok := g.byID[c.playerID]; ok {
		choice := *msg.AnswerIndex
		p.CurrentAnswer = &choice
		p.AnswerTime = elapsed
	}

	count := AnswerCountMessage{Type: "answer_count", Count: len(g.answers), Total: len(g.players)}
	g.broadcastHostsLocked(count)
	g.sendLocked(c, count)
}

// resetLocked returns the session to the lobby and zeroes every player's
// scoring state. The roster itself is kept.
func (g *Game) resetLocked() {
	g.phase = PhaseLobby
	g.questionIndex = 0
	g.questionStart = time.Time{}
	clear(g.answers)

	for _, p := range g.players {
		p.Score = 0
		p.Streak = 0
		p.LastCorrect = nil
		p.LastPoints = 0
		p.CurrentAnswer = nil
		p.AnswerTime = 0
	}

	logf(g.cfg, "GAMES: Game reset to lobby with %d players", len(g.players))

	g.broadcastLobbyLocked()
}

func (g *Game) sendQuestionLocked() {
	g.phase = PhaseQuestion
	clear(g.answers)
	g.questionStart = g.now()

	for _, p := range g.players {
		p.CurrentAnswer = nil
		p.AnswerTime = 0
	}

	q := g.catalog[g.questionIndex]

	logf(g.cfg, "GAMES: Question %d/%d sent", g.questionIndex+1, len(g.catalog))

	// Everyone gets the question, but never the correct index.
	g.broadcastLocked(QuestionMessage{
		Type:           "question",
		QuestionIndex:  g.questionIndex,
		TotalQuestions: len(g.catalog),
		Question:       q.Prompt,
		Options:        q.Options,
		Image:          q.Image,
		IsBonus:        q.IsBonus,
		TimeLimit:      int(g.timeLimit / time.Second),
		StartTime:      g.questionStart.UnixMilli(),
	})
}

func (g *Game) revealAnswerLocked() {
	g.phase = PhaseReveal
	q := g.catalog[g.questionIndex]

	var distribution [4]int
	playersCorrect := []string{}

	for _, p := range g.players {
		answer, answered := g.answers[p.ID]
		if !answered {
			// A miss is scored as a wrong answer.
			p.Streak = 0
			correct := false
			p.LastCorrect = &correct
			p.LastPoints = 0
			continue
		}

		if answer.choice >= 0 && answer.choice < len(distribution) {
			distribution[answer.choice]++
		}

		correct := answer.choice == q.CorrectIndex
		points, newStreak := calculateScore(correct, answer.elapsed, g.timeLimit, p.Streak)
		p.Score += points
		p.Streak = newStreak
		p.LastCorrect = &correct
		p.LastPoints = points

		if correct {
			playersCorrect = append(playersCorrect, p.Nickname)
		}
	}

	reveal := AnswerRevealMessage{
		Type:           "answer_reveal",
		CorrectIndex:   q.CorrectIndex,
		Distribution:   distribution,
		PlayersCorrect: playersCorrect,
		RevealImage:    q.RevealImage,
	}

	g.broadcastHostsLocked(reveal)

	for client := range g.clients {
		if client.playerID == "" {
			continue
		}
		p, ok := g.byID[client.playerID]
		if !ok {
			continue
		}

		personal := reveal
		personal.PlayerResult = &PlayerResult{
			Correct:    p.LastCorrect != nil && *p.LastCorrect,
			Points:     p.LastPoints,
			TotalScore: p.Score,
			Streak:     p.Streak,
		}
		g.sendLocked(client, personal)
	}
}

func (g *Game) showLeaderboardLocked() {
	g.phase = PhaseLeaderboard
	rankings := g.rankingsLocked()

	g.broadcastHostsLocked(LeaderboardMessage{Type: "leaderboard", Rankings: rankings})

	for client := range g.clients {
		if client.playerID == "" {
			continue
		}
		g.sendLocked(client, LeaderboardMessage{
			Type:       "leaderboard",
			Rankings:   rankings,
			PlayerRank: playerRank(rankings, g.byID[client.playerID]),
		})
	}
}

func (g *Game) showFinishedLocked() {
	g.phase = PhaseFinished
	rankings := g.rankingsLocked()

	logf(g.cfg, "GAMES: Game finished with %d players", len(g.players))

	g.broadcastHostsLocked(FinishedMessage{Type: "finished", Rankings: rankings})

	for client := range g.clients {
		if client.playerID == "" {
			continue
		}
		p := g.byID[client.playerID]
		score := 0
		if p != nil {
			score = p.Score
		}
		g.sendLocked(client, FinishedMessage{
			Type:        "finished",
			Rankings:    rankings,
			PlayerRank:  playerRank(rankings, p),
			PlayerScore: &score,
		})
	}
}

// rankingsLocked sorts by score descending; the stable sort keeps join
// order for ties.
func (g *Game) rankingsLocked() []RankEntry {
	sorted := make([]*Player, len(g.players))
	copy(sorted, g.players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	rankings := make([]RankEntry, len(sorted))
	for i, p := range sorted {
		rankings[i] = RankEntry{Nickname: p.Nickname, Score: p.Score, Rank: i + 1}
	}
	return rankings
}

// playerRank returns the 1-based rank of p by nickname match, or zero when
// absent so the field is omitted from the JSON frame.
func playerRank(rankings []RankEntry, p *Player) int {
	if p == nil {
		return 0
	}
	for _, entry := range rankings {
		if entry.Nickname == p.Nickname {
			return entry.Rank
		}
	}
	return 0
}

func (g *Game) broadcastLobbyLocked() {
	players := make([]LobbyPlayer, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, LobbyPlayer{ID: p.ID, Nickname: p.Nickname})
	}

	g.broadcastLocked(LobbyUpdateMessage{Type: "lobby_update", Players: players})
}

func (g *Game) broadcastLocked(msg any) {
	for client := range g.clients {
		select {
		case client.send <- msg:
		default:
			delete(g.clients, client)
			close(client.send)
		}
	}
}

func (g *Game) broadcastHostsLocked(msg any) {
	for client := range g.clients {
		if !client.isHost {
			continue
		}
		select {
		case client.send <- msg:
		default:
			delete(g.clients, client)
			close(client.send)
		}
	}
}

// sendLocked delivers to a single client, silently dropping the message if
// the connection is already gone. Push updates are fire-and-forget; the
// next broadcast resyncs whoever reconnects.
func (g *Game) sendLocked(c *Client, msg any) {
	if !g.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		delete(g.clients, c)
		close(c.send)
	}
}

func trimNickname(nickname string) string {
	trimmed := strings.TrimSpace(nickname)
	runes := []rune(trimmed)
	if len(runes) > maxNicknameLen {
		return string(runes[:maxNicknameLen])
	}
	return trimmed
}
