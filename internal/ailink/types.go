package ailink

import (
	"time"

	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/core"
)

// GroundRequest asks a provider to answer a claim prompt with web search
// grounding.
type GroundRequest struct {
	Claim      string
	PromptSlug string
	Role       string
	// Provider forces a provider instance id, bypassing role routing.
	Provider    string
	Model       string
	Temperature float64
	Search      bool
	Timeout     time.Duration
}

// GroundResponse is the raw provider answer plus grounding citations.
type GroundResponse struct {
	Text      string
	Citations []core.Citation
	Provider  string
	Model     string
	Usage     *driver.Usage
	Duration  time.Duration
}
