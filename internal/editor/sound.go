package editor

import "ColoringBoard/internal/logging"

// Sound plays short feedback sounds. Implementations may fail or block;
// the session never waits for them.
type Sound interface {
	Play(name string) error
}

// SoundFunc adapts a function to Sound.
type SoundFunc func(name string) error

func (f SoundFunc) Play(name string) error { return f(name) }

// NopSound plays nothing.
type NopSound struct{}

func (NopSound) Play(string) error { return nil }

// play fires the sound on its own goroutine. Errors and panics are logged
// at debug level and otherwise dropped.
func (s *Session) play(name string) {
	snd := s.sound
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.For("sound").Debug("sound panicked", "name", name, "panic", r)
			}
		}()
		if err := snd.Play(name); err != nil {
			logging.For("sound").Debug("sound failed", "name", name, "err", err)
		}
	}()
}
