package craps

// Observer receives engine events. Implementations must not mutate the
// table; they are called synchronously from the goroutine driving it.
type Observer interface {
	OnRoll(roll Roll, before Snapshot)
	OnTransition(ev TransitionEvent)
	OnSettled(s SettledWager)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) OnRoll(Roll, Snapshot)         {}
func (NopObserver) OnTransition(TransitionEvent) {}
func (NopObserver) OnSettled(SettledWager)       {}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) OnRoll(r Roll, s Snapshot) {
	for _, x := range o {
		x.OnRoll(r, s)
	}
}

func (o Observers) OnTransition(ev TransitionEvent) {
	for _, x := range o {
		x.OnTransition(ev)
	}
}

func (o Observers) OnSettled(s SettledWager) {
	for _, x := range o {
		x.OnSettled(s)
	}
}
