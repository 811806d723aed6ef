package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/bracket-tracker/models"
	"github.com/Dosada05/bracket-tracker/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type setScoreRequest struct {
	ScoreP1 *int `json:"score_p1"`
	ScoreP2 *int `json:"score_p2"`
}

type setWinnerRequest struct {
	WinnerID string `json:"winner_id"`
}

type setBestOfRequest struct {
	BestOf int `json:"best_of"`
}

func matchParams(r *http.Request) (string, string, error) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		return "", "", err
	}
	matchID, err := pathParam(r, "matchID")
	if err != nil {
		return "", "", err
	}
	return tournamentID, matchID, nil
}

func (h *MatchHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setScoreRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ScoreP1 == nil || input.ScoreP2 == nil {
		badRequestResponse(w, r, errors.New("score_p1 and score_p2 are required"))
		return
	}

	state, err := h.matchService.SetScore(r.Context(), tournamentID, matchID, *input.ScoreP1, *input.ScoreP2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithMatch(w, r, state, matchID)
}

func (h *MatchHandler) SetWinner(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setWinnerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.WinnerID = strings.TrimSpace(input.WinnerID)
	if input.WinnerID == "" {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}

	state, err := h.matchService.SetWinner(r.Context(), tournamentID, matchID, input.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithMatch(w, r, state, matchID)
}

func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.StartMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithMatch(w, r, state, matchID)
}

func (h *MatchHandler) ResetMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.ResetMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithMatch(w, r, state, matchID)
}

func (h *MatchHandler) SetBestOf(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setBestOfRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.matchService.SetBestOf(r.Context(), tournamentID, matchID, input.BestOf)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondWithMatch(w, r, state, matchID)
}

// respondWithMatch returns the edited match next to the whole bracket, since
// a result change may have seated competitors elsewhere.
func (h *MatchHandler) respondWithMatch(w http.ResponseWriter, r *http.Request, state *models.BracketState, matchID string) {
	match, _ := state.FindMatch(matchID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match, "bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
