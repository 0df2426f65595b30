package dnd

import "github.com/vango-dev/dragdrop/pkg/dom"

// Outcome classifies how a session ended.
type Outcome uint8

const (
	// OutcomeReleased: pressed and released without leaving the dead zone.
	OutcomeReleased Outcome = iota + 1
	// OutcomeAborted: the grab function refused to produce an entity.
	OutcomeAborted
	// OutcomeDropped: released over a droppable; OnDragEnd was called.
	OutcomeDropped
	// OutcomeCancelled: released elsewhere (or outside the viewport); the
	// entity was restored and OnDragCancel was called.
	OutcomeCancelled
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeReleased:
		return "released"
	case OutcomeAborted:
		return "aborted"
	case OutcomeDropped:
		return "dropped"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Observer is notified of session lifecycle transitions. Observers run
// synchronously after the host callbacks and must not dispatch events.
type Observer interface {
	// Activated is called once per session when the entity is lifted.
	Activated(s Session)

	// Finished is called once for every armed session. target is the drop
	// target for OutcomeDropped and nil otherwise.
	Finished(outcome Outcome, s Session, target *dom.Element)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnActivated func(s Session)
	OnFinished  func(outcome Outcome, s Session, target *dom.Element)
}

// Activated implements Observer.
func (f ObserverFuncs) Activated(s Session) {
	if f.OnActivated != nil {
		f.OnActivated(s)
	}
}

// Finished implements Observer.
func (f ObserverFuncs) Finished(outcome Outcome, s Session, target *dom.Element) {
	if f.OnFinished != nil {
		f.OnFinished(outcome, s, target)
	}
}

// Observers fans out to several observers in order. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) Activated(s Session) {
	for _, o := range m {
		o.Activated(s)
	}
}

func (m multiObserver) Finished(outcome Outcome, s Session, target *dom.Element) {
	for _, o := range m {
		o.Finished(outcome, s, target)
	}
}
