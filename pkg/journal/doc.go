// Package journal records completed workflow transitions as an append-only
// trail of who moved from where to where, and when.
//
// A Recorder plugs into the workflow transition-log extension point and
// writes one Record per completed transition to a pluggable Store. The
// bundled MemoryStore keeps records in process; persistence belongs to a
// collaborator implementing Store.
//
// # Usage
//
//	store := journal.NewMemoryStore()
//	recorder := journal.NewRecorder(store)
//
//	wf := workflow.MustNew(def, workflow.WithTransitionLog(recorder.Hook()))
//
//	// ... run transitions ...
//
//	recs, err := recorder.List(ctx, journal.Filter{Transition: "publish"})
package journal
