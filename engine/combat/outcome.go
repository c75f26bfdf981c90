package combat

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/types"
)

// Result is how a session ended, seen from the player team.
type Result string

const (
	ResultVictory   Result = "victory"
	ResultDefeat    Result = "defeat"
	ResultFled      Result = "fled"
	ResultStalemate Result = "stalemate"
)

// Drop is one loot roll that succeeded.
type Drop struct {
	ItemID string
	To     string
}

// Outcome summarizes a finished session.
type Outcome struct {
	Session   string
	Result    Result
	Winner    types.Team
	Rounds    int
	Exp       int // total exp from defeated actors
	Gold      int
	ExpShare  int // floor(Exp / surviving winners)
	GoldShare int
	Paid      []string // controlled survivors that received a share
	Defeated  []string // template ids of defeated losers
	Loot      []Drop
}

// checkEnd finishes the session when some team has no living actor left.
func (e *Engine) checkEnd() bool {
	alive := e.livingPerTeam()
	wiped := false
	for _, n := range alive {
		if n == 0 {
			wiped = true
			break
		}
	}
	if !wiped {
		return false
	}

	if n, ok := alive[types.TeamPlayer]; ok && n == 0 {
		e.finish(ResultDefeat)
	} else {
		e.finish(ResultVictory)
	}
	return true
}

// livingPerTeam counts living actors for every team in the session.
func (e *Engine) livingPerTeam() map[types.Team]int {
	alive := map[types.Team]int{}
	for _, a := range e.session.participants {
		if _, seen := alive[a.Team]; !seen {
			alive[a.Team] = 0
		}
		if a.IsAlive() {
			alive[a.Team]++
		}
	}
	return alive
}

// finish closes the session and pays out. The session is torn down before
// any hook runs, so payouts never overlap with combat mutations.
func (e *Engine) finish(result Result) {
	s := e.session
	out := Outcome{Session: s.id, Result: result, Rounds: s.round}

	// Losers are the wiped teams only. A third team still standing is
	// neither paid nor counted as defeated.
	var winners, losers []*actor.Actor
	if result == ResultVictory || result == ResultDefeat {
		alive := e.livingPerTeam()
		out.Winner = e.winningTeam(result, alive)
		for _, a := range s.participants {
			switch {
			case a.Team == out.Winner && a.IsAlive():
				winners = append(winners, a)
			case alive[a.Team] == 0:
				losers = append(losers, a)
			}
		}
	}

	if result == ResultVictory {
		e.tally(&out, winners, losers)
	}

	s.log.WithFields(logrus.Fields{
		"result": result,
		"rounds": out.Rounds,
		"exp":    out.Exp,
		"gold":   out.Gold,
	}).Info("combat finished")

	hooks := s.hooks
	e.teardown()
	e.last = &out

	e.bus.Emit(types.Event{
		Type: types.EventCombatEnd,
		Name: string(result),
		Data: map[string]any{
			"session": out.Session,
			"winner":  string(out.Winner),
			"exp":     out.ExpShare,
			"gold":    out.GoldShare,
			"rounds":  out.Rounds,
		},
	})

	if result == ResultVictory {
		e.payout(out, hooks)
	}
	e.bus.Drain()
}

// winningTeam is the player team on a victory it took part in. Otherwise,
// as in a defeat or a fight between AI teams, it is the team of the first
// living participant.
func (e *Engine) winningTeam(result Result, alive map[types.Team]int) types.Team {
	if _, ok := alive[types.TeamPlayer]; ok && result == ResultVictory {
		return types.TeamPlayer
	}
	for _, a := range e.session.participants {
		if a.IsAlive() {
			return a.Team
		}
	}
	return ""
}

// tally splits exp and gold over every surviving winner but pays only the
// controlled ones, then rolls loot for the first controlled survivor.
func (e *Engine) tally(out *Outcome, winners, losers []*actor.Actor) {
	for _, l := range losers {
		out.Exp += l.ExpValue
		out.Gold += l.GoldValue
		out.Defeated = append(out.Defeated, l.Kind)
	}
	if len(winners) > 0 {
		out.ExpShare = out.Exp / len(winners)
		out.GoldShare = out.Gold / len(winners)
	}

	var recipient string
	for _, w := range winners {
		if w.Controlled {
			out.Paid = append(out.Paid, w.ID)
			if recipient == "" {
				recipient = w.ID
			}
		}
	}
	if recipient == "" {
		return
	}
	for _, l := range losers {
		for _, entry := range l.Loot {
			if e.rng.Roll(100) <= entry.Chance {
				out.Loot = append(out.Loot, Drop{ItemID: entry.ItemID, To: recipient})
			}
		}
	}
}

func (e *Engine) payout(out Outcome, hooks Hooks) {
	if hooks.Rewards != nil {
		for _, id := range out.Paid {
			hooks.Rewards.AwardCombat(id, out.ExpShare, out.GoldShare)
		}
	}
	for _, d := range out.Loot {
		e.bus.Emit(types.Event{
			Type:   types.EventLootDropped,
			Target: d.To,
			Name:   e.defs.ItemName(d.ItemID),
			Data:   map[string]any{"item": d.ItemID},
		})
		if hooks.Rewards != nil {
			hooks.Rewards.AwardLoot(d.To, d.ItemID)
		}
	}
	if hooks.Progress != nil {
		for _, kind := range out.Defeated {
			hooks.Progress.Report("defeated:" + kind)
		}
	}
}
