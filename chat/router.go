package chat

import (
	"context"
	"errors"

	"fogmoe/config"
	"fogmoe/model"
)

const apologyReply = "Sorry, I could not reach any AI backend right now. Please try again in a moment."

// Backend pairs a configured provider with its ID for logging.
type Backend struct {
	Name     string
	Provider model.Provider
}

// Router walks an ordered backend list until one produces a reply.
//
// Each backend gets exactly one attempt per request. Safety blocks and
// transport errors both advance to the next backend; the distinction only
// matters for logging. Ask never returns an error: when every backend fails
// the user gets an apology instead of silence.
type Router struct {
	Orchestrator *Orchestrator
	Backends     []Backend
}

// Ask runs the request against each backend in order and returns the first
// successful reply with its tool log.
func (r *Router) Ask(ctx context.Context, history []model.Message, rc *model.RequestContext) (string, []model.ToolLogEntry) {
	for _, backend := range r.Backends {
		if backend.Provider == nil {
			continue
		}

		reply, toolLog, err := r.Orchestrator.Run(ctx, backend.Provider, history, rc)
		if err == nil {
			if config.Debug {
				config.DebugLog.Printf("[Router] Backend %s answered (tool log: %d entries)", backend.Name, len(toolLog))
			}
			return reply, toolLog
		}

		if errors.Is(err, model.ErrSafetyBlocked) {
			if config.Debug {
				config.DebugLog.Printf("[Router] Backend %s blocked the request, trying next", backend.Name)
			}
			continue
		}

		if config.Debug {
			config.DebugLog.Printf("[Router] Backend %s failed: %v", backend.Name, err)
		}
	}

	if config.Debug {
		config.DebugLog.Printf("[Router] All %d backends failed", len(r.Backends))
	}
	return apologyReply, nil
}
