package main

// Messages coming from clients
type ClientMessage struct {
	Type        string `json:"type"`                  // "host_join", "player_join", "start_game", "reset_game", "next", "submit_answer"
	Nickname    string `json:"nickname,omitempty"`    // player_join
	AnswerIndex *int   `json:"answerIndex,omitempty"` // submit_answer
}

// LobbyPlayer is the roster view shared with every client; scores stay
// out of it.
type LobbyPlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// LobbyUpdateMessage is broadcast whenever the roster changes or the game
// returns to the lobby.
type LobbyUpdateMessage struct {
	Type    string        `json:"type"` // "lobby_update"
	Players []LobbyPlayer `json:"players"`
}

type GameStartedMessage struct {
	Type string `json:"type"` // "game_started"
}

// QuestionMessage carries everything clients need to present a question.
// It never includes the correct option index.
type QuestionMessage struct {
	Type           string   `json:"type"` // "question"
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Image          string   `json:"image,omitempty"`
	IsBonus        bool     `json:"isBonus,omitempty"`
	TimeLimit      int      `json:"timeLimit"` // seconds
	StartTime      int64    `json:"startTime"` // unix milliseconds
}

// AnswerCountMessage keeps the host screen's tally current and doubles as
// the submission receipt for the answering player.
type AnswerCountMessage struct {
	Type  string `json:"type"` // "answer_count"
	Count int    `json:"count"`
	Total int    `json:"total"`
}

// PlayerResult is the personalized slice of a reveal, present only in the
// copy sent to that player's connection.
type PlayerResult struct {
	Correct    bool `json:"correct"`
	Points     int  `json:"points"`
	TotalScore int  `json:"totalScore"`
	Streak     int  `json:"streak"`
}

type AnswerRevealMessage struct {
	Type           string        `json:"type"` // "answer_reveal"
	CorrectIndex   int           `json:"correctIndex"`
	Distribution   [4]int        `json:"distribution"`
	PlayersCorrect []string      `json:"playersCorrect"`
	RevealImage    string        `json:"revealImage,omitempty"`
	PlayerResult   *PlayerResult `json:"playerResult,omitempty"`
}

// RankEntry is one row of the leaderboard, rank starting at 1.
type RankEntry struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type LeaderboardMessage struct {
	Type       string      `json:"type"` // "leaderboard"
	Rankings   []RankEntry `json:"rankings"`
	PlayerRank int         `json:"playerRank,omitempty"`
}

type FinishedMessage struct {
	Type        string      `json:"type"` // "finished"
	Rankings    []RankEntry `json:"rankings"`
	PlayerRank  int         `json:"playerRank,omitempty"`
	PlayerScore *int        `json:"playerScore,omitempty"`
}

// ErrorMessage is only ever sent to the single requester that caused it.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type JoinedMessage struct {
	Type     string `json:"type"` // "joined"
	PlayerID string `json:"playerId"`
}
