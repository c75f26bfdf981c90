package quest

// Snapshot is the persisted form of tracker state.
type Snapshot struct {
	Active    []string                       `json:"active_quests"`
	Completed []string                       `json:"completed_quests"`
	Failed    []string                       `json:"failed_quests,omitempty"`
	Progress  map[string][]ObjectiveSnapshot `json:"quest_progress"`
}

// ObjectiveSnapshot is one persisted objective counter.
type ObjectiveSnapshot struct {
	Current   int  `json:"current"`
	Completed bool `json:"completed"`
}

// Serialize captures active, completed and failed ids plus every tracked
// objective counter.
func (t *Tracker) Serialize() Snapshot {
	snap := Snapshot{
		Active:    t.ActiveQuests(),
		Completed: t.CompletedQuests(),
		Failed:    t.FailedQuests(),
		Progress:  make(map[string][]ObjectiveSnapshot, len(t.progress)),
	}
	for id, objs := range t.progress {
		out := make([]ObjectiveSnapshot, len(objs))
		for i, o := range objs {
			out[i] = ObjectiveSnapshot{Current: o.Current, Completed: o.Completed}
		}
		snap.Progress[id] = out
	}
	return snap
}

// Deserialize replaces tracker state with a snapshot. Ids without a
// definition are skipped with a warning and counters are re-clamped
// against the current definitions. An active quest with every objective
// done is restored as completed. No events are emitted and nothing is
// paid.
func (t *Tracker) Deserialize(snap Snapshot) {
	t.Reset()

	mark := func(ids []string, s Status) {
		for _, id := range ids {
			if _, ok := t.defs.Quest(id); !ok {
				t.log.WithField("quest", id).Warn("snapshot references unknown quest, skipped")
				continue
			}
			t.status[id] = s
		}
	}
	mark(snap.Completed, Completed)
	mark(snap.Failed, Failed)
	mark(snap.Active, Active)

	for id, saved := range snap.Progress {
		def, ok := t.defs.Quest(id)
		if !ok {
			continue
		}
		objs := newObjectives(def)
		for i, o := range def.Objectives {
			if i < len(saved) {
				objs[i].Current = max(0, min(saved[i].Current, o.Required))
				objs[i].Completed = objs[i].Current >= o.Required
			}
		}
		t.progress[id] = objs
	}

	// Active quests always carry counters, even from a hand-written save.
	// One whose objectives are all done is closed as completed, unpaid:
	// nothing could ever advance it again.
	for id, s := range t.status {
		if s != Active {
			continue
		}
		def, ok := t.defs.Quest(id)
		if !ok {
			continue
		}
		objs, ok := t.progress[id]
		if !ok {
			objs = newObjectives(def)
			t.progress[id] = objs
		}
		if allDone(objs) {
			t.log.WithField("quest", id).Warn("snapshot quest has every objective done, marked completed")
			t.status[id] = Completed
		}
	}
}

func allDone(objs []Objective) bool {
	if len(objs) == 0 {
		return false
	}
	for _, o := range objs {
		if !o.Completed {
			return false
		}
	}
	return true
}
