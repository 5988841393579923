// Package router turns inbound text into dialogue steps and ledger
// operations, and renders every outcome as a reply.
package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	errx "github.com/hydrotrack-bot/server/internal/core/error"
	"github.com/hydrotrack-bot/server/internal/tracker/dialogue"
	"github.com/hydrotrack-bot/server/internal/tracker/metrics"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/hydrotrack-bot/server/internal/tracker/store"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

const (
	CmdStart         = "start"
	CmdHelp          = "help"
	CmdSetProfile    = "set_profile"
	CmdLogWater      = "log_water"
	CmdLogFood       = "log_food"
	CmdLogWorkout    = "log_workout"
	CmdCheckProgress = "check_progress"
	CmdCancel        = "cancel"
)

// Runner is what transports call for each inbound message.
type Runner interface {
	HandleMessage(ctx context.Context, msg model.InboundMessage) string
}

// Config holds the collaborators of the router. Engine and Metrics are
// built from defaults when nil; a zero LookupTimeout means
// model.DefaultNutritionTimeout.
type Config struct {
	Store         *store.Store
	Engine        *dialogue.Engine
	Lookup        model.NutritionLookup
	Metrics       *metrics.Metrics
	LookupTimeout time.Duration
}

type commandFunc func(ctx context.Context, userID int64, args []string) (string, error)

type Router struct {
	store         *store.Store
	engine        *dialogue.Engine
	lookup        model.NutritionLookup
	metrics       *metrics.Metrics
	lookupTimeout time.Duration
	commands      map[string]commandFunc
}

func New(cfg Config) (*Router, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if cfg.Lookup == nil {
		return nil, fmt.Errorf("nutrition lookup is nil")
	}
	if cfg.Engine == nil {
		cfg.Engine = dialogue.NewEngine(cfg.Store)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = model.DefaultNutritionTimeout
	}

	r := &Router{
		store:         cfg.Store,
		engine:        cfg.Engine,
		lookup:        cfg.Lookup,
		metrics:       cfg.Metrics,
		lookupTimeout: cfg.LookupTimeout,
	}
	r.commands = map[string]commandFunc{
		CmdStart:         r.help,
		CmdHelp:          r.help,
		CmdSetProfile:    r.setProfile,
		CmdLogWater:      r.logWater,
		CmdLogFood:       r.logFood,
		CmdLogWorkout:    r.logWorkout,
		CmdCheckProgress: r.checkProgress,
		CmdCancel:        r.cancel,
	}
	return r, nil
}

// HandleMessage routes one inbound message: commands always run (abandoning
// any open dialogue), other text answers the open dialogue.
func (r *Router) HandleMessage(ctx context.Context, msg model.InboundMessage) string {
	started := time.Now()
	log := logx.With().
		Str("request_id", uuid.NewString()).
		Int64("user_id", msg.UserID).
		Logger()
	r.metrics.MessagesProcessed.Inc()

	var reply string
	if name, args, ok := ParseCommand(msg.Text); ok {
		log.Debug().Str("command", name).Int("args", len(args)).Msg("command received")
		reply = r.HandleCommand(ctx, msg.UserID, name, args)
	} else if r.engine.CurrentState(msg.UserID) != model.Idle {
		reply = r.HandleDialogueReply(ctx, msg.UserID, msg.Text)
	} else {
		reply = MsgUseCommands
	}

	r.metrics.SetUsers(r.store.Users(), r.store.Profiles())
	log.Info().Dur("took", time.Since(started)).Msg("message handled")
	return reply
}

// HandleCommand runs a top-level command. An open dialogue is cancelled
// first, except for /cancel which reports on it.
func (r *Router) HandleCommand(ctx context.Context, userID int64, name string, args []string) string {
	started := time.Now()
	name = strings.ToLower(name)
	fn, known := r.commands[name]

	label := name
	if !known {
		label = "unknown"
	}
	defer r.metrics.ObserveCommand(label, started)

	var prefix string
	if name != CmdCancel && r.engine.Cancel(userID) {
		prefix = MsgDialogueCancelled + "\n"
	}
	if !known {
		return prefix + HelpText
	}

	reply, err := fn(ctx, userID, args)
	if err != nil {
		return prefix + r.renderError(userID, name, err)
	}
	return prefix + reply
}

// HandleDialogueReply feeds text into the user's open dialogue.
func (r *Router) HandleDialogueReply(ctx context.Context, userID int64, text string) string {
	state := r.engine.CurrentState(userID)
	switch {
	case state.IsProfileStep():
		step := r.engine.SubmitProfileStep(userID, text)
		r.observeStep("profile", userID, step)
		if step.Outcome == model.Complete {
			return formatProfileSaved(step.Profile, step.Goals)
		}
		return step.Prompt

	case state == model.AwaitingFoodGrams:
		step := r.engine.SubmitFoodGrams(userID, text)
		r.observeStep("food", userID, step)
		if step.Outcome == model.Complete {
			return formatFoodLogged(step)
		}
		return step.Prompt

	default:
		return MsgUseCommands
	}
}

func (r *Router) observeStep(dialogueName string, userID int64, step model.Step) {
	r.metrics.DialogueSteps.WithLabelValues(dialogueName, step.Outcome.String()).Inc()
	if step.Err != nil {
		r.metrics.ErrorsTotal.WithLabelValues(errx.KindOf(step.Err).String()).Inc()
		logx.Debug().Err(step.Err).Int64("user_id", userID).Str("dialogue", dialogueName).Msg("dialogue step rejected")
	}
}

func (r *Router) renderError(userID int64, command string, err error) string {
	kind := errx.KindOf(err)
	r.metrics.ErrorsTotal.WithLabelValues(kind.String()).Inc()

	var ev *zerolog.Event
	if kind == errx.KindInternal {
		ev = logx.Error()
	} else {
		ev = logx.Debug()
	}
	ev.Err(err).Int64("user_id", userID).Str("command", command).Stringer("kind", kind).Msg("command failed")

	return errx.UserMessage(err)
}

// ====================== Commands ======================

func (r *Router) help(context.Context, int64, []string) (string, error) {
	return HelpText, nil
}

func (r *Router) setProfile(_ context.Context, userID int64, _ []string) (string, error) {
	return r.engine.StartProfile(userID), nil
}

func (r *Router) logWater(_ context.Context, userID int64, args []string) (string, error) {
	if len(args) != 1 {
		return "", errx.InvalidArgument(UsageLogWater)
	}
	amount, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errx.InvalidArgument(UsageLogWater)
	}
	res, err := r.store.LogWater(userID, amount)
	if err != nil {
		return "", err
	}
	return formatWater(res), nil
}

// logFood looks the product up without holding any user lock, bounded by
// lookupTimeout, then opens the grams dialogue.
func (r *Router) logFood(ctx context.Context, userID int64, args []string) (string, error) {
	product := strings.TrimSpace(strings.Join(args, " "))
	if product == "" {
		return "", errx.InvalidArgument(UsageLogFood)
	}
	if _, ok := r.store.Get(userID); !ok {
		return "", errx.MissingProfile(store.MsgMissingProfile)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	started := time.Now()
	info, err := r.lookup.Query(lookupCtx, product)
	if err != nil || !info.Usable() {
		r.metrics.ObserveLookup("not_found", started)
		if err != nil {
			logx.Warn().Err(err).Int64("user_id", userID).Str("product", product).Msg("nutrition lookup failed")
		}
		return "", errx.LookupFailure(dialogue.MsgProductNotFound, err)
	}
	r.metrics.ObserveLookup("found", started)

	return r.engine.StartFood(userID, info)
}

func (r *Router) logWorkout(_ context.Context, userID int64, args []string) (string, error) {
	if len(args) != 2 {
		return "", errx.InvalidArgument(UsageLogWorkout)
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		return "", errx.InvalidArgument(UsageLogWorkout)
	}
	res, err := r.store.LogWorkout(userID, args[0], minutes)
	if err != nil {
		return "", err
	}
	return formatWorkout(res), nil
}

func (r *Router) checkProgress(_ context.Context, userID int64, _ []string) (string, error) {
	p, err := r.store.Progress(userID)
	if err != nil {
		return "", err
	}
	return formatProgress(p), nil
}

func (r *Router) cancel(_ context.Context, userID int64, _ []string) (string, error) {
	if r.engine.Cancel(userID) {
		return MsgCancelled, nil
	}
	return MsgNothingToCancel, nil
}

// ====================== Helper function ======================

// ParseCommand splits "/name@bot arg1 arg2" into its lower-cased name and
// whitespace separated args. ok is false for text that is not a command.
func ParseCommand(text string) (name string, args []string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}

var _ Runner = (*Router)(nil)
