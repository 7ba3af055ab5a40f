package usecase

import (
	"context"

	"voxbot/internal/domain"
	"voxbot/internal/ports"
)

const agentFallbackLine = "Let me get back to you on that."

// responder turns a directive into the final spoken reply, invoking the
// downstream agent when the handler handed off.
type responder struct {
	agent  ports.Agent
	events ports.EventSink
}

func newResponder(agent ports.Agent, events ports.EventSink) responder {
	return responder{agent: agent, events: events}
}

// Respond fills in directive.ResponseText from the agent for hand-off
// directives. Agent failures degrade to the handler's own text (or a canned
// line), never to a dropped turn.
func (r responder) Respond(ctx context.Context, event domain.TranscriptEvent, directive *domain.Directive, session domain.Session) {
	if directive.SkipAI {
		return
	}

	prompt := directive.AgentPrompt
	if prompt == "" {
		prompt = event.Transcript
	}

	reply, err := r.agent.Invoke(ctx, ports.AgentRequest{
		SessionID:   session.ID,
		Transcript:  prompt,
		Instruction: directive.AgentInstruction,
		Session:     session,
	})
	if err != nil {
		r.events.SessionError(session.ID, domain.ErrorCodeAgent, err.Error())
		if directive.ResponseText == "" {
			directive.ResponseText = agentFallbackLine
		}
		return
	}
	if reply != "" {
		directive.ResponseText = reply
	}
}
