package nfaexec

// Snapshot is the diagnostic history stream of spec §6: a per-row record
// good enough for a debugger or test to assert against, but never gating
// correctness — a production driver may discard it entirely (spec §9,
// "Dead/snapshot material").
type Snapshot struct {
	Rows []RowSnapshot
}

// RowSnapshot is one row's outcome: which contexts completed, which live
// contexts remain, and which absorptions happened. The deeper per-state
// diagnostics the spec's stream names (stateMerges, discardedStates,
// deadStates) are folded into DeadContextIDs/Absorptions here rather than
// tracked at per-state granularity — this engine does not keep history
// instances per-state once they have been deduplicated or discarded, by
// design (spec §9 explicitly allows this material to be elided).
type RowSnapshot struct {
	Row             int
	JustCompleted   []CompletedContext
	LiveMatchStarts []int
	Absorptions     []Absorption
	DeadContextIDs  []int
}

// Snapshot returns the full row-by-row diagnostic history accumulated so
// far. Safe to call at any point; does not affect future ProcessRow calls.
func (e *Executor) Snapshot() Snapshot {
	rows := make([]RowSnapshot, len(e.history))
	for i, r := range e.history {
		rows[i] = RowSnapshot{
			Row:             r.Row,
			JustCompleted:   r.JustCompleted,
			LiveMatchStarts: r.LiveMatchStarts,
			Absorptions:     r.Absorptions,
			DeadContextIDs:  r.DeadContextIDs,
		}
	}
	return Snapshot{Rows: rows}
}
