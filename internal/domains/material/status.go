package material

import (
	"fmt"

	"github.com/looplab/fsm"
)

// InvalidTransitionError names the rejected status edge.
type InvalidTransitionError struct {
	From MaterialStatus
	To   MaterialStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// transitionEvents is the single authoritative edge set for the material
// lifecycle. Events are named by their target status:
//
//	uploaded -> transcoding -> {done, failed}, failed -> transcoding (retry),
//	done terminal.
func transitionEvents() fsm.Events {
	return fsm.Events{
		{Name: string(StatusTranscoding), Src: []string{string(StatusUploaded), string(StatusFailed)}, Dst: string(StatusTranscoding)},
		{Name: string(StatusDone), Src: []string{string(StatusTranscoding)}, Dst: string(StatusDone)},
		{Name: string(StatusFailed), Src: []string{string(StatusTranscoding)}, Dst: string(StatusFailed)},
	}
}

// allowedEdges is flattened once from the event table so per-call checks do
// not rebuild a machine.
var allowedEdges = func() map[MaterialStatus]map[MaterialStatus]bool {
	set := make(map[MaterialStatus]map[MaterialStatus]bool)
	for _, ev := range transitionEvents() {
		to := MaterialStatus(ev.Dst)
		for _, src := range ev.Src {
			from := MaterialStatus(src)
			if set[from] == nil {
				set[from] = make(map[MaterialStatus]bool)
			}
			set[from][to] = true
		}
	}
	return set
}()

// CanTransition reports whether from -> to is an allowed edge.
// A self-transition is always permitted as a no-op.
func CanTransition(from, to MaterialStatus) error {
	if from == to {
		return nil
	}
	if !allowedEdges[from][to] {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
