package news

import "math/rand"

// Browser User-Agent strings rotated across fetch attempts. A courtesy
// against trivial bot blocking, not a security measure.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

// UserAgentPool hands out a random User-Agent per request. The pool is
// immutable after construction and safe for concurrent reads.
type UserAgentPool struct {
	agents []string
	intn   func(n int) int
}

// NewUserAgentPool builds a pool from the given agents, falling back to the
// built-in set when none are provided. intn may be nil for rand.Intn.
func NewUserAgentPool(agents []string, intn func(n int) int) *UserAgentPool {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	if intn == nil {
		intn = rand.Intn
	}
	return &UserAgentPool{
		agents: append([]string(nil), agents...),
		intn:   intn,
	}
}

// Pick returns one User-Agent from the pool.
func (p *UserAgentPool) Pick() string {
	return p.agents[p.intn(len(p.agents))]
}
