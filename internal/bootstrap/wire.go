package bootstrap

import (
	"log"

	"github.com/redis/go-redis/v9"

	"voxbot/internal/agent"
	"voxbot/internal/classify"
	"voxbot/internal/config"
	"voxbot/internal/domain"
	"voxbot/internal/normalize"
	"voxbot/internal/ports"
	"voxbot/internal/server"
	"voxbot/internal/store"
	"voxbot/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.Controller
	Server     *server.Server
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build() (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	normalizer, err := normalize.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	var sessions ports.SessionStore = store.NewMemory()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = store.NewRedis(client, cfg.Session.TTL)
	}

	var downstream ports.Agent = agent.Noop{}
	if cfg.OpenAI.APIKey != "" {
		downstream = agent.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	controller, err := usecase.NewController(
		sessions,
		classify.New(cfg.Bot.Names),
		normalizer,
		downstream,
		logSink{},
	)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Controller: controller,
		Server:     server.New(controller),
		Config:     cfg,
	}, nil
}

// logSink emits orchestrator events to the process log.
type logSink struct{}

func (logSink) SessionStateChanged(sessionID string, from, to domain.ConversationState, intent string) {
	log.Printf("session %s: %s -> %s (%s)", sessionID, from, to, intent)
}

func (logSink) DirectiveIssued(sessionID string, directive domain.Directive) {
	if directive.ResponseText == "" {
		return
	}
	log.Printf("session %s: speak %q (skipAI=%v)", sessionID, directive.ResponseText, directive.SkipAI)
}

func (logSink) SessionError(sessionID string, code domain.ErrorCode, detail string) {
	log.Printf("session %s: error %s: %s", sessionID, code, detail)
}
