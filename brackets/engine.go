package brackets

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/bracket-tracker/models"
	"github.com/google/uuid"
)

const DefaultBestOf = 7

// Engine generates double elimination brackets and advances them after
// results change. It holds no tournament state and is safe for concurrent use.
type Engine struct {
	bestOf int
	newID  func() string
	logger *slog.Logger
}

type Option func(*Engine)

// WithBestOf sets the series length of newly created matches. Non-positive or
// even values are ignored.
func WithBestOf(bestOf int) Option {
	return func(e *Engine) {
		if bestOf > 0 && bestOf%2 == 1 {
			e.bestOf = bestOf
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator replaces the uuid based match ID source.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		bestOf: DefaultBestOf,
		newID:  uuid.NewString,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) GetName() string {
	return DoubleEliminationFormat
}

func (e *Engine) BestOf() int {
	return e.bestOf
}

// Advance moves the bracket forward as far as the recorded results allow and
// returns the new state. The input is never modified. Running Advance on its
// own output is a no-op, and a state that is not ready to move is returned
// unchanged without an error.
func (e *Engine) Advance(ctx context.Context, state *models.BracketState) (*models.BracketState, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: nil state", ErrCorruptState)
	}
	st := state.Clone()
	if !st.HasBracket() {
		return st, nil
	}

	a, err := e.newAdvancer(st)
	if err != nil {
		return nil, err
	}

	maxPasses := 4*len(st.Competitors) + 8
	for pass := 0; ; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pass >= maxPasses {
			return nil, fmt.Errorf("%w: advancement did not settle after %d passes", ErrCorruptState, maxPasses)
		}
		a.changed = false
		a.advanceUpper()
		a.advanceLower()
		a.advanceFinals()
		if !a.changed {
			break
		}
	}
	return st, nil
}

type advancer struct {
	engine *Engine
	st     *models.BracketState
	roster rosterLookup
	queue  *PendingQueue
	elim   *EliminationTracker
	loc    *LocationIndex

	changed bool
}

func (e *Engine) newAdvancer(st *models.BracketState) (*advancer, error) {
	loc, err := BuildLocationIndex(st)
	if err != nil {
		return nil, err
	}
	elim, err := newEliminationTracker(&st.Eliminated)
	if err != nil {
		return nil, err
	}
	return &advancer{
		engine: e,
		st:     st,
		roster: newRosterLookup(st),
		queue:  newPendingQueue(&st.PendingLowerQueue),
		elim:   elim,
		loc:    loc,
	}, nil
}

func (a *advancer) advanceUpper() {
	upper := a.st.Brackets.Upper

	for r, round := range upper {
		if !round.IsCompleted() {
			continue
		}
		for _, m := range round {
			loser, ok := m.Loser()
			if !ok || !a.loc.IsSeatedIn(loser, m.ID) {
				continue
			}
			a.dropToLower(loser, r)
		}
	}

	latest := upper[len(upper)-1]
	if len(latest) < 2 || !latest.IsCompleted() {
		return
	}
	winners := a.seatedWinners(latest)
	if len(winners) < 2 {
		return
	}
	sortBySkill(winners, a.roster)
	round := a.newRound(models.BracketUpper, len(upper), winners)
	a.st.Brackets.Upper = append(a.st.Brackets.Upper, round)
	a.engine.logger.Debug("upper round created",
		slog.Int("round", len(upper)),
		slog.Int("matches", len(round)))
	a.changed = true
}

func (a *advancer) dropToLower(id string, fromRound int) {
	if c, ok := a.roster[id]; ok {
		r := fromRound
		c.DroppedFromRound = &r
	}
	a.queue.Push(id)
	a.loc.pend(id)
	a.changed = true
}

func (a *advancer) advanceLower() {
	lower := a.st.Brackets.Lower

	if len(lower) == 0 {
		if a.queue.Len() >= 2 {
			a.appendLowerRound(a.queue.Drain())
		}
		return
	}

	latest := lower[len(lower)-1]
	if latest.IsCompleted() {
		pool := a.lowerPool(latest)
		switch {
		case len(pool) >= 2:
			a.queue.Drain()
			a.appendLowerRound(pool)
		case len(pool) == 1:
			if a.queue.Push(pool[0]) {
				a.loc.pend(pool[0])
				a.changed = true
			}
		}
	}

	for r, round := range a.st.Brackets.Lower {
		if !round.IsCompleted() {
			continue
		}
		for _, m := range round {
			loser, ok := m.Loser()
			if !ok || !a.loc.IsSeatedIn(loser, m.ID) {
				continue
			}
			a.eliminate(models.Elimination{
				CompetitorID: loser,
				Bracket:      models.BracketLower,
				Round:        r,
			})
		}
	}
}

// lowerPool merges the winners still seated in the latest lower round with the
// pending queue, without duplicates or eliminated competitors.
func (a *advancer) lowerPool(latest models.Round) []string {
	candidates := append(a.seatedWinners(latest), a.queue.IDs()...)
	seen := make(map[string]struct{}, len(candidates))
	pool := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, dup := seen[id]; dup || a.elim.IsEliminated(id) {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, id)
	}
	return pool
}

func (a *advancer) appendLowerRound(ids []string) {
	sortForLower(ids, a.roster)
	index := len(a.st.Brackets.Lower)
	round := a.newRound(models.BracketLower, index, ids)
	a.st.Brackets.Lower = append(a.st.Brackets.Lower, round)
	a.engine.logger.Debug("lower round created",
		slog.Int("round", index),
		slog.Int("matches", len(round)))
	a.changed = true
}

func (a *advancer) advanceFinals() {
	b := &a.st.Brackets

	if b.GrandFinals == nil {
		upperFinalist, ok := a.upperFinalist()
		if !ok {
			return
		}
		lowerFinalist, ok := a.lowerFinalist()
		if !ok {
			return
		}
		a.queue.Remove(lowerFinalist)
		gf := a.engine.newMatch(models.BracketGrandFinals, 0, 0,
			models.CompetitorSeat(upperFinalist), models.CompetitorSeat(lowerFinalist))
		b.GrandFinals = gf
		a.loc.seat(upperFinalist, gf.ID)
		a.loc.seat(lowerFinalist, gf.ID)
		a.engine.logger.Debug("grand finals created",
			slog.String("upper_finalist", upperFinalist),
			slog.String("lower_finalist", lowerFinalist))
		a.changed = true
		return
	}

	gf := b.GrandFinals
	if !gf.IsCompleted() {
		return
	}
	winner, ok := gf.Winner()
	if !ok {
		return
	}

	if gf.Player1.Holds(winner) {
		a.eliminateRunnerUp(gf)
		return
	}

	if b.GrandFinalsReset == nil {
		reset := a.engine.newMatch(models.BracketGrandFinalsReset, 1, 0, gf.Player1, gf.Player2)
		b.GrandFinalsReset = reset
		a.loc.seat(gf.Player1.CompetitorID, reset.ID)
		a.loc.seat(gf.Player2.CompetitorID, reset.ID)
		a.engine.logger.Debug("grand finals reset created", slog.String("match_id", reset.ID))
		a.changed = true
		return
	}

	if b.GrandFinalsReset.IsCompleted() {
		a.eliminateRunnerUp(b.GrandFinalsReset)
	}
}

func (a *advancer) eliminateRunnerUp(m *models.Match) {
	loser, ok := m.Loser()
	if !ok || !a.loc.IsSeatedIn(loser, m.ID) {
		return
	}
	placement := RunnerUpPlacement
	a.eliminate(models.Elimination{
		CompetitorID: loser,
		Bracket:      m.Bracket,
		Round:        m.Round,
		Placement:    &placement,
	})
}

// upperFinalist returns the winner of the upper bracket final once it has
// been played.
func (a *advancer) upperFinalist() (string, bool) {
	upper := a.st.Brackets.Upper
	latest := upper[len(upper)-1]
	if len(latest) != 1 || !latest.IsCompleted() {
		return "", false
	}
	w, ok := latest[0].Winner()
	if !ok || !a.loc.IsSeatedIn(w, latest[0].ID) {
		return "", false
	}
	return w, true
}

// lowerFinalist returns the last competitor standing in the lower bracket.
// With no lower round at all (two competitors) that is the only queued
// competitor.
func (a *advancer) lowerFinalist() (string, bool) {
	lower := a.st.Brackets.Lower
	if len(lower) == 0 {
		if a.queue.Len() != 1 {
			return "", false
		}
		return a.queue.IDs()[0], true
	}

	latest := lower[len(lower)-1]
	if len(latest) != 1 || !latest.IsCompleted() {
		return "", false
	}
	w, ok := latest[0].Winner()
	if !ok {
		return "", false
	}
	if !a.loc.IsSeatedIn(w, latest[0].ID) && !a.loc.IsPending(w) {
		return "", false
	}
	for _, id := range a.queue.IDs() {
		if id != w {
			return "", false
		}
	}
	return w, true
}

func (a *advancer) eliminate(e models.Elimination) {
	if !a.elim.Record(e) {
		return
	}
	a.queue.Remove(e.CompetitorID)
	a.loc.eliminate(e.CompetitorID)
	a.engine.logger.Debug("competitor eliminated",
		slog.String("competitor_id", e.CompetitorID),
		slog.String("bracket", string(e.Bracket)),
		slog.Int("round", e.Round))
	a.changed = true
}

// seatedWinners returns the winners of a round, in slot order, that have not
// yet been moved on from it.
func (a *advancer) seatedWinners(round models.Round) []string {
	winners := make([]string, 0, len(round))
	for _, m := range round {
		w, ok := m.Winner()
		if ok && a.loc.IsSeatedIn(w, m.ID) {
			winners = append(winners, w)
		}
	}
	return winners
}

func (a *advancer) newRound(bracket models.Bracket, index int, ids []string) models.Round {
	round := a.engine.buildRound(bracket, index, ids, a.engine.bestOf)
	for _, m := range round {
		for _, s := range m.Seats() {
			if !s.IsBye() {
				a.loc.seat(s.CompetitorID, m.ID)
			}
		}
	}
	return round
}

// buildRound snake-pairs the ordered IDs into a round. Pairings against a BYE
// are completed on creation with the competitor as winner.
func (e *Engine) buildRound(bracket models.Bracket, index int, ordered []string, bestOf int) models.Round {
	pairs := snakePair(ordered)
	round := make(models.Round, 0, len(pairs))
	for slot, p := range pairs {
		m := e.newMatch(bracket, index, slot, p[0], p[1])
		m.BestOf = bestOf
		round = append(round, m)
	}
	return round
}

func (e *Engine) newMatch(bracket models.Bracket, round, slot int, p1, p2 models.Seat) *models.Match {
	m := &models.Match{
		ID:      e.newID(),
		Bracket: bracket,
		Round:   round,
		Slot:    slot,
		Player1: p1,
		Player2: p2,
		Status:  models.MatchStatusNextUp,
		BestOf:  e.bestOf,
	}
	switch {
	case p2.IsBye() && !p1.IsBye():
		completeByBye(m, p1.CompetitorID)
	case p1.IsBye() && !p2.IsBye():
		completeByBye(m, p2.CompetitorID)
	}
	return m
}

func completeByBye(m *models.Match, winner string) {
	w := winner
	m.WinnerID = &w
	m.Status = models.MatchStatusCompleted
}
