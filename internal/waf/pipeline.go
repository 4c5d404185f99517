package waf

import (
	"context"
	"fmt"

	"github.com/aridelmo/argus/internal/audit"
	"github.com/aridelmo/argus/internal/logger"
	"github.com/aridelmo/argus/internal/metrics"
	"github.com/aridelmo/argus/internal/models"
)

// Action is the terminal outcome of a pipeline run.
type Action string

const (
	ActionAllow Action = models.ActionAllow
	ActionBlock Action = models.ActionBlock
	// ActionError marks an infrastructure failure. The enforcement point
	// must map it to a hard failure response, never to an allow.
	ActionError Action = models.ActionError
)

// Verdict is the output of the decision service.
type Verdict struct {
	Allow       bool
	Reason      string
	LearnedRule string
	Score       *float64
	Perplexity  *float64
}

// Analyzer produces a Verdict for an AnalysisRequest. Satisfiable by any
// implementation honoring the contract; the pipeline assumes nothing else.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (Verdict, error)
}

// Notifier receives fire-and-forget alerts about pipeline events.
type Notifier interface {
	BlockDetected(rec models.AuditRecord)
	RuleLearned(pattern string)
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Action Action
	Record *models.AuditRecord
	Err    error
}

// Pipeline orchestrates the two filtering stages, learning, auditing and the
// live event feed. Invocations are independent and concurrent; the only
// shared state lives in the stores.
type Pipeline struct {
	Rules     *RuleStore
	Whitelist *WhitelistStore
	Mode      *ModeController
	Analyzer  Analyzer
	Audit     *audit.Service
	Events    *audit.Broadcaster
	Notifier  Notifier
}

// Run drives a single request to a terminal state. Exactly one audit record
// is appended per run; ALLOW and BLOCK outcomes are additionally published to
// the event broadcaster. Infrastructure failures end in ActionError and are
// never converted to an allow.
func (p *Pipeline) Run(ctx context.Context, req AnalysisRequest) Outcome {
	metrics.IncRequest()

	mode, _ := p.Mode.Snapshot()
	rec := &models.AuditRecord{
		Method:   req.Method,
		Path:     req.Path,
		Protocol: req.Protocol,
		Body:     req.Body,
		Mode:     string(mode),
	}

	if mode == ModeOff {
		rec.Action = models.ActionAllow
		rec.Reason = "inspection disabled"
		return p.finish(rec)
	}

	// Stage 1: fast pattern match against the shared rule set.
	if match, ok := p.Rules.Match(req.Stage1Input()); ok {
		rec.Stage1Matched = true
		rec.Stage1Rule = match.Pattern

		if p.Whitelist.Contains(req.Body) {
			rec.Action = models.ActionAllow
			rec.Reason = fmt.Sprintf("matched rule %q but body is whitelisted", match.Pattern)
			return p.finish(rec)
		}

		rec.IsMalicious = true
		rec.Action = models.ActionBlock
		rec.Reason = fmt.Sprintf("matched rule %q", match.Pattern)
		return p.finish(rec)
	}

	if mode == ModeFast {
		rec.Action = models.ActionAllow
		rec.Reason = "no rule matched"
		return p.finish(rec)
	}

	// Stage 2: delegate to the decision service.
	rec.Stage2Checked = true
	verdict, err := p.Analyzer.Analyze(ctx, req)
	if err != nil {
		metrics.IncAnalyzerFailure()
		rec.Action = models.ActionError
		rec.Reason = err.Error()
		return p.fail(rec, err)
	}

	rec.Reason = verdict.Reason
	rec.Score = verdict.Score
	rec.Perplexity = verdict.Perplexity

	if verdict.Allow {
		rec.Action = models.ActionAllow
		return p.finish(rec)
	}

	rec.IsMalicious = true
	rec.Action = models.ActionBlock
	if verdict.LearnedRule != "" {
		p.learn(rec, verdict.LearnedRule)
	}
	return p.finish(rec)
}

// learn promotes a rule synthesized by the decision service into the fast
// path. Failure to learn never changes the verdict for this request.
func (p *Pipeline) learn(rec *models.AuditRecord, pattern string) {
	_, created, err := p.Rules.Add(pattern, models.RuleOriginLearned)
	if err != nil {
		logger.WithComponent("pipeline").WithError(err).
			WithField("pattern", pattern).Warn("failed to promote learned rule")
		return
	}
	rec.LearnedRule = pattern
	if created {
		metrics.IncRuleLearned()
		if p.Notifier != nil {
			go p.Notifier.RuleLearned(pattern)
		}
	}
}

// finish appends the audit record, publishes the event and counts the
// outcome. A failed append downgrades the run to ActionError: an unaudited
// decision is an infrastructure failure.
func (p *Pipeline) finish(rec *models.AuditRecord) Outcome {
	if err := p.Audit.Append(rec); err != nil {
		rec.Action = models.ActionError
		cause := fmt.Errorf("append audit record: %w", err)
		metrics.IncError()
		logger.WithComponent("pipeline").WithError(cause).WithField("path", rec.Path).
			Error("pipeline run failed")
		return Outcome{Action: ActionError, Record: rec, Err: cause}
	}

	if p.Events != nil {
		p.Events.Publish(*rec)
	}

	switch rec.Action {
	case models.ActionBlock:
		if rec.Stage2Checked {
			metrics.IncBlockedStage2()
		} else {
			metrics.IncBlockedStage1()
		}
		logger.WithComponent("pipeline").WithFields(map[string]interface{}{
			"record": rec.UUID,
			"path":   rec.Path,
			"reason": rec.Reason,
		}).Warn("request blocked")
		if p.Notifier != nil {
			go p.Notifier.BlockDetected(*rec)
		}
		return Outcome{Action: ActionBlock, Record: rec}
	default:
		metrics.IncAllowed()
		return Outcome{Action: ActionAllow, Record: rec}
	}
}

// fail records an infrastructure error terminal. The audit append is
// attempted on a best-effort basis; the error outcome stands either way.
func (p *Pipeline) fail(rec *models.AuditRecord, cause error) Outcome {
	metrics.IncError()
	logger.WithComponent("pipeline").WithError(cause).WithField("path", rec.Path).
		Error("pipeline run failed")

	if err := p.Audit.Append(rec); err != nil {
		logger.WithComponent("pipeline").WithError(err).
			Error("failed to audit errored run")
	}
	return Outcome{Action: ActionError, Record: rec, Err: cause}
}
