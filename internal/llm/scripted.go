package llm

import (
	"context"

	"github.com/valter-silva-au/parley/internal/core"
)

// Scripted is a Collaborator that delivers every line exactly as scripted.
// It needs no credential or network and is fully deterministic, which makes
// it the offline-mode voice and the test double of choice.
type Scripted struct{}

// NewScripted creates the offline collaborator.
func NewScripted() *Scripted {
	return &Scripted{}
}

// Voice returns the scripted line verbatim.
func (s *Scripted) Voice(_ context.Context, req core.VoiceRequest) (string, error) {
	return req.ScriptedLine, nil
}
