package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultApologyMessage is returned whenever generation or persistence fails.
const DefaultApologyMessage = "متأسفانه در پردازش درخواست شما مشکلی پیش آمد. لطفاً دوباره تلاش کنید."

// Options tunes the orchestrator. Zero values are replaced by defaults.
type Options struct {
	GenerateTimeout time.Duration
	PersistTimeout  time.Duration
	ShortWindow     int
	FactWindow      int
	Apology         string
}

func (o Options) withDefaults() Options {
	if o.GenerateTimeout <= 0 {
		o.GenerateTimeout = 2 * time.Minute
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = 10 * time.Second
	}
	if o.ShortWindow <= 0 {
		o.ShortWindow = 10
	}
	if o.FactWindow <= 0 {
		o.FactWindow = 3
	}
	if o.Apology == "" {
		o.Apology = DefaultApologyMessage
	}
	return o
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Logger    *slog.Logger
	Gate      Gate
	Router    *Router
	Generator Generator
	Memory    Memory
	Profiles  ProfileStore
}

// Orchestrator runs the Gating, Routing, Handling and Updating stages for
// each request. It is safe for concurrent use.
type Orchestrator struct {
	log       *slog.Logger
	gate      Gate
	router    *Router
	generator Generator
	memory    Memory
	profiles  ProfileStore
	opts      Options
}

// NewOrchestrator creates an Orchestrator. A nil Router gets the built-in handlers.
func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	router := deps.Router
	if router == nil {
		router = DefaultRouter(DefaultFallbackQuestion)
	}
	gate := deps.Gate
	if gate.MissingMessage == "" || gate.IncompleteMessage == "" {
		gate = NewGate(gate.MissingMessage, gate.IncompleteMessage)
	}

	return &Orchestrator{
		log:       log.With("component", "orchestrator"),
		gate:      gate,
		router:    router,
		generator: deps.Generator,
		memory:    deps.Memory,
		profiles:  deps.Profiles,
		opts:      opts.withDefaults(),
	}
}

// Process runs one request through the pipeline and always returns exactly
// one Reply. Failures surface as the apology text; nothing panics out.
func (o *Orchestrator) Process(ctx context.Context, req Request) (reply Reply) {
	intent := ParseIntent(string(req.Intent))
	log := o.log.With("request_id", req.ID, "user_id", req.UserID, "intent", intent)
	started := time.Now()

	stage := StageGating
	enter := func(s Stage) {
		stage = s
		log.DebugContext(ctx, "Entering stage", "stage", s)
	}

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Recovered panic in pipeline", "stage", stage, "panic", r)
			reply = TextReply(o.opts.Apology)
		}
		log.InfoContext(ctx, "Request processed", "reply_kind", reply.Kind.String(), "duration", time.Since(started))
	}()

	enter(StageGating)
	if intent != IntentProfileCollection {
		if res := o.gate.Check(req.Profile); !res.Proceed {
			log.InfoContext(ctx, "Request blocked by profile gate")
			enter(StageDone)
			return TextReply(res.Message)
		}
	}

	enter(StageRouting)
	handler := o.router.Route(intent)

	enter(StageHandling)
	digest := o.memory.Digest(req.UserID, o.opts.ShortWindow, o.opts.FactWindow)

	reply, err := o.generate(ctx, handler, req, digest)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.ErrorContext(ctx, "Generation timed out", "error", err, "timeout", o.opts.GenerateTimeout)
		case errors.Is(err, context.Canceled):
			log.WarnContext(ctx, "Generation cancelled", "error", err)
		default:
			log.ErrorContext(ctx, "Generation failed", "error", err)
		}
		enter(StageDone)
		return TextReply(o.opts.Apology)
	}

	enter(StageUpdating)
	reply = o.update(ctx, log, req, reply)

	enter(StageDone)
	return reply
}

func (o *Orchestrator) generate(ctx context.Context, handler Handler, req Request, digest string) (Reply, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.opts.GenerateTimeout)
	defer cancel()
	return handler.Handle(genCtx, o.generator, req, digest)
}

func (o *Orchestrator) update(ctx context.Context, log *slog.Logger, req Request, reply Reply) Reply {
	switch reply.Kind {
	case ReplyText:
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Request cancelled, skipping memory update", "error", ctx.Err())
			return reply
		}
		o.memory.Record(ctx, req.UserID, req.Message, reply.Text)
		return reply

	case ReplyProfile:
		if reply.Profile == nil {
			log.ErrorContext(ctx, "Profile reply without payload")
			return TextReply(o.opts.Apology)
		}
		update := *reply.Profile
		if !update.ProfileComplete {
			return ProfileReply(update)
		}

		if missing := update.Profile.Missing(); len(missing) > 0 {
			log.InfoContext(ctx, "Collection reported complete with fields missing", "missing", missing)
			update.ProfileComplete = false
			update.NextQuestion = MissingFieldsQuestion(missing)
			return ProfileReply(update)
		}

		update.Profile.UserID = req.UserID
		update.Profile.Complete = true

		persistCtx, cancel := context.WithTimeout(ctx, o.opts.PersistTimeout)
		defer cancel()
		if err := o.profiles.SetProfile(persistCtx, req.UserID, FullPatch(update.Profile)); err != nil {
			log.ErrorContext(ctx, "Failed to persist completed profile", "error", err)
			return TextReply(o.opts.Apology)
		}
		log.InfoContext(ctx, "Profile completed and saved")
		return ProfileReply(update)

	default:
		log.ErrorContext(ctx, "Unknown reply kind", "kind", reply.Kind)
		return TextReply(o.opts.Apology)
	}
}
