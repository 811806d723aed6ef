package handlers

import (
	"net/http"

	"github.com/Dosada05/bracket-tracker/services"
)

type CompetitorHandler struct {
	competitorService services.CompetitorService
}

func NewCompetitorHandler(competitorService services.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorService: competitorService}
}

type setSeedRequest struct {
	Placement *int `json:"placement"`
}

type seedingScoresRequest struct {
	Scores map[string]float64 `json:"scores"`
}

func (h *CompetitorHandler) ListCompetitors(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitors, err := h.competitorService.List(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitors": competitors}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitorHandler) AddCompetitor(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddCompetitorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.competitorService.Add(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitorHandler) RemoveCompetitor(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitorID, err := pathParam(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitorService.Remove(r.Context(), tournamentID, competitorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetRoster removes every competitor of the tournament and its bracket.
func (h *CompetitorHandler) ResetRoster(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	removed, err := h.competitorService.ResetRoster(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"removed": removed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetSeed sets a manual seed; a null placement clears it.
func (h *CompetitorHandler) SetSeed(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitorID, err := pathParam(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setSeedRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.competitorService.SetSeed(r.Context(), tournamentID, competitorID, input.Placement)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitorHandler) ApplySeeding(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input seedingScoresRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.competitorService.ApplySeedingScores(r.Context(), tournamentID, input.Scores)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitorHandler) ResetSeeding(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := pathParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitorService.ResetSeeding(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
