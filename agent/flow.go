package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
)

const apologyText = "Je suis désolé, je rencontre un problème technique. Pouvez-vous réessayer dans un instant ?"

var errEmptyMessage = errors.New("message is empty")

// Flow runs one user message through the pipeline: extraction, the
// confirmation gate, retrieval, ranking and synthesis. Every stage awaits
// the previous one; sessions only share the memory store, which locks per
// session.
type Flow struct {
	store    *memory.Store
	extract  *ExtractStep
	retrieve *RetrieveStep
	rank     *RankStep
	synth    *SynthesizeStep
	classify Classifier
}

func NewFlow(store *memory.Store, extract *ExtractStep, retrieve *RetrieveStep, rank *RankStep, synth *SynthesizeStep) *Flow {
	return &Flow{
		store:    store,
		extract:  extract,
		retrieve: retrieve,
		rank:     rank,
		synth:    synth,
		classify: ClassifyConfirmation,
	}
}

// WithClassifier swaps the confirmation classifier.
func (f *Flow) WithClassifier(c Classifier) *Flow {
	f.classify = c
	return f
}

// Execute processes one message and reports the reply, streamed through the
// reporter and returned whole. The returned error carries a llm.ModelError
// kind when a model chain failed; the session already holds a
// failed-assistant turn by then so the conversation can continue.
func (f *Flow) Execute(ctx context.Context, reporter Reporter, sessionID, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &llm.ModelError{Kind: llm.KindValidationError, Cause: errEmptyMessage}
	}

	snap := f.store.Snapshot(sessionID)

	if snap.AwaitingConfirmation() {
		if f.classify(text) == Affirmative {
			return f.releasePending(ctx, reporter, sessionID, text)
		}

		// Modifying or ambiguous: drop the held offers and treat the
		// message as new preference input. Pending offers never outlive
		// one exchange.
		f.store.Update(sessionID, func(s *memory.Session) {
			s.Pending = nil
		})
	}

	return f.gather(ctx, reporter, sessionID, text, snap.Prefs)
}

// releasePending hands out the offers computed in the previous exchange,
// exactly as held, and clears them.
func (f *Flow) releasePending(ctx context.Context, reporter Reporter, sessionID, text string) (*Response, error) {
	var pending []catalog.Match
	var prefs memory.Preferences
	var turns []memory.Turn

	f.store.Update(sessionID, func(s *memory.Session) {
		s.AddUserTurn(text)
		pending = s.Pending
		s.Pending = nil
		prefs = s.Prefs
		turns = s.Turns
	})

	if err := reporter.Offers(pending); err != nil {
		logger.Error("client went away before offers were sent", zap.Error(err))
	}

	answer, err := f.synth.Run(ctx, reporter, prefs, pending, turns)
	return f.finishAnswer(reporter, sessionID, answer, pending, err)
}

// gather merges freshly extracted preferences and either asks for more,
// emits a confirmation prompt holding ranked offers, or answers directly
// when retrieval comes back empty.
func (f *Flow) gather(ctx context.Context, reporter Reporter, sessionID, text string, known memory.Preferences) (*Response, error) {
	patch := f.extract.Run(ctx, text, known)

	var prefs memory.Preferences
	var turns []memory.Turn
	f.store.Update(sessionID, func(s *memory.Session) {
		s.AddUserTurn(text)
		s.Prefs = s.Prefs.Merge(patch)
		prefs = s.Prefs
		turns = s.Turns
	})

	if !prefs.Sufficient() {
		question := clarifyingQuestion(prefs)
		f.store.Update(sessionID, func(s *memory.Session) {
			s.AddAssistantTurn(question, nil)
		})

		f.deliver(reporter, question, KindClarify)
		return &Response{Kind: KindClarify, Text: question}, nil
	}

	candidates := f.retrieve.Run(ctx, prefs)
	if len(candidates) == 0 {
		// Valid outcome, not an error: say so instead of confirming an
		// empty offer list.
		answer, err := f.synth.Run(ctx, reporter, prefs, nil, turns)
		return f.finishAnswer(reporter, sessionID, answer, nil, err)
	}

	matches, err := f.rank.Run(ctx, prefs, candidates)
	if err != nil {
		return f.fail(reporter, sessionID, err)
	}

	prompt := confirmationPrompt(prefs)
	f.store.Update(sessionID, func(s *memory.Session) {
		s.Pending = matches
		s.AddAssistantTurn(prompt, nil)
	})

	f.deliver(reporter, prompt, KindConfirm)
	return &Response{Kind: KindConfirm, Text: prompt}, nil
}

// finishAnswer persists the synthesized text, partial or complete, as the
// assistant turn. A cancelled stream keeps its prefix; only an empty failed
// synthesis takes the apology path.
func (f *Flow) finishAnswer(reporter Reporter, sessionID, answer string, offers []catalog.Match, synthErr error) (*Response, error) {
	if synthErr != nil && answer == "" {
		return f.fail(reporter, sessionID, synthErr)
	}

	f.store.Update(sessionID, func(s *memory.Session) {
		s.AddAssistantTurn(answer, offers)
	})

	if synthErr != nil {
		logger.Error("stream ended early, partial answer kept", zap.Error(synthErr))
	}
	if err := reporter.End(KindAnswer); err != nil {
		logger.Error("failed to send end of stream", zap.Error(err))
	}

	return &Response{Kind: KindAnswer, Text: answer, Offers: offers}, nil
}

// fail records a failed assistant turn so the conversation survives the
// outage, then surfaces the machine-readable kind.
func (f *Flow) fail(reporter Reporter, sessionID string, err error) (*Response, error) {
	logger.Error("pipeline stage failed", zap.Error(err))

	f.store.Update(sessionID, func(s *memory.Session) {
		s.AddFailedAssistantTurn(apologyText)
	})

	if sendErr := reporter.Error(string(llm.KindOf(err)), apologyText); sendErr != nil {
		logger.Error("failed to send error event", zap.Error(sendErr))
	}
	return nil, err
}

func (f *Flow) deliver(reporter Reporter, text string, kind ResponseKind) {
	if err := reporter.Content(text); err != nil {
		logger.Error("failed to send content chunk", zap.Error(err))
		return
	}
	if err := reporter.End(kind); err != nil {
		logger.Error("failed to send end of stream", zap.Error(err))
	}
}
