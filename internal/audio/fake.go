package audio

// Fake is a test double that records playback requests.
type Fake struct {
	Plays []Play
	Stops int
	// Playing is the track currently playing, 0 when silent.
	Playing int

	// PlayError, if set, is returned by Play and nothing starts.
	PlayError error
}

// Play is one recorded Play call.
type Play struct {
	Track  int
	Volume int
}

// Play implements Player.
func (f *Fake) Play(track, volume int) error {
	if f.PlayError != nil {
		return f.PlayError
	}
	f.Plays = append(f.Plays, Play{Track: track, Volume: volume})
	f.Playing = track
	return nil
}

// Stop implements Player.
func (f *Fake) Stop() error {
	f.Stops++
	f.Playing = 0
	return nil
}
