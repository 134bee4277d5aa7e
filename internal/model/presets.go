package model

// DefaultTimers returns the preset routines seeded on first boot.
func DefaultTimers() []CustomTimer {
	return []CustomTimer{
		{
			Name: "Pomodoro",
			Phases: []TimerPhase{
				{Name: "Work", DurationSeconds: 25 * 60, SoundTrack: 1},
				{Name: "Break", DurationSeconds: 5 * 60, SoundTrack: 1},
			},
		},
		{
			Name: "Workout",
			Phases: []TimerPhase{
				{Name: "Warmup", DurationSeconds: 5 * 60, SoundTrack: 1},
				{Name: "Exercise", DurationSeconds: 20 * 60, SoundTrack: 1},
				{Name: "Cooldown", DurationSeconds: 5 * 60, SoundTrack: 1},
			},
		},
		{
			Name: "Study",
			Phases: []TimerPhase{
				{Name: "Focus", DurationSeconds: 45 * 60, SoundTrack: 1},
				{Name: "Review", DurationSeconds: 10 * 60, SoundTrack: 1},
				{Name: "Break", DurationSeconds: 15 * 60, SoundTrack: 1},
			},
		},
	}
}
