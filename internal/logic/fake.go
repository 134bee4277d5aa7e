package logic

// FakeNotifier is a test double that records every call.
type FakeNotifier struct {
	Local  []LocalCall
	Remote []RemoteCall
	// Stops counts StopAlert calls, including ones made while idle.
	Stops int
	// Alerting is true between a LocalAlert and the next StopAlert.
	Alerting bool
}

// LocalCall is one recorded LocalAlert.
type LocalCall struct {
	Track  int
	Volume int
}

// RemoteCall is one recorded RemoteNotify or NotifyAll. All is true for
// NotifyAll, in which case Targets is nil.
type RemoteCall struct {
	Title   string
	Message string
	Targets []int
	All     bool
}

// LocalAlert implements Notifier.
func (f *FakeNotifier) LocalAlert(track, volume int) {
	f.Local = append(f.Local, LocalCall{Track: track, Volume: volume})
	f.Alerting = true
}

// StopAlert implements Notifier.
func (f *FakeNotifier) StopAlert() {
	f.Stops++
	f.Alerting = false
}

// RemoteNotify implements Notifier.
func (f *FakeNotifier) RemoteNotify(title, message string, targets []int) {
	f.Remote = append(f.Remote, RemoteCall{
		Title:   title,
		Message: message,
		Targets: append([]int(nil), targets...),
	})
}

// NotifyAll implements Notifier.
func (f *FakeNotifier) NotifyAll(title, message string) {
	f.Remote = append(f.Remote, RemoteCall{Title: title, Message: message, All: true})
}
