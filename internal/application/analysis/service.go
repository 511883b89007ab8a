package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/bryanwahyu/fraudshield/internal/application"
	"github.com/bryanwahyu/fraudshield/internal/domain/failures"
	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/domain/history"
	"github.com/bryanwahyu/fraudshield/internal/infra/ai/prompt"
	"github.com/bryanwahyu/fraudshield/internal/metrics"
)

// DefaultTimeout bounds the single remote call. There is no retry.
const DefaultTimeout = 60 * time.Second

// ArtifactStore port (penyimpanan lampiran untuk audit)
type ArtifactStore interface {
	PutAttachment(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service runs one analysis per call: assemble, pick protocol, generate once,
// normalize. History, failure log and attachment archive are optional.
// Service is safe for concurrent use and imposes no in-flight limit.
type Service struct {
	Generator fraud.Generator
	History   history.Repository
	Failures  failures.Repository
	Artifacts ArtifactStore
	Clock     application.Clock
	Timeout   time.Duration
}

// Analyze returns the normalized result wrapped in a history record with a
// fresh id and timestamp. Typed failures from package fraud propagate as is.
func (s *Service) Analyze(ctx context.Context, tenant string, in fraud.Input) (*history.Record, error) {
	proto := fraud.SelectProtocol(in.VerifySource)

	segs, err := fraud.Assemble(in)
	if err != nil {
		s.fail(ctx, tenant, failures.PhaseAssemble, proto, in, err)
		return nil, err
	}

	req := fraud.GenerateRequest{
		SystemInstruction: prompt.AnalystInstruction(proto == fraud.ProtocolText),
		Segments:          segs,
		Protocol:          proto,
	}

	reply, err := s.generate(ctx, req)
	if err != nil {
		if !errors.Is(err, fraud.ErrEmptyResponse) {
			err = fmt.Errorf("%w: %w", fraud.ErrEmptyResponse, err)
		}
		s.fail(ctx, tenant, failures.PhaseGenerate, proto, in, err)
		return nil, err
	}

	res, err := fraud.Normalize(proto, reply)
	if err != nil {
		s.fail(ctx, tenant, failures.PhaseDecode, proto, in, err)
		return nil, err
	}

	rec := &history.Record{
		ID:        history.RecordID(uuid.NewString()),
		TenantID:  tenant,
		Type:      history.TypeOf(in),
		Verdict:   res.Verdict,
		RiskScore: res.RiskScore,
		Result:    res,
		CreatedAt: s.now(),
	}
	metrics.AnalysesTotal.WithLabelValues(proto.String(), "ok").Inc()

	entry := log.WithFields(log.Fields{
		"tenant":   tenant,
		"id":       rec.ID,
		"protocol": proto.String(),
		"verdict":  rec.Verdict,
		"score":    rec.RiskScore,
	})

	if s.Artifacts != nil && in.Attachment != nil {
		key := fmt.Sprintf("%s/%s/%s", tenant, rec.CreatedAt.UTC().Format("2006/01/02"), rec.ID)
		url, err := s.Artifacts.PutAttachment(ctx, key, in.Attachment.Data, in.Attachment.MIMEType)
		if err != nil {
			entry.WithError(err).Warn("attachment archive failed")
		} else {
			rec.AttachmentURL = url
		}
	}

	if s.History != nil {
		if err := s.History.Save(ctx, rec); err != nil {
			// the result is still returned; history is best effort
			entry.WithError(err).Warn("history save failed")
		}
	}

	entry.Info("analysis complete")
	return rec, nil
}

func (s *Service) generate(ctx context.Context, req fraud.GenerateRequest) (fraud.Reply, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.Generator.Generate(callCtx, req)
	metrics.GenerateDurationSeconds.WithLabelValues(req.Protocol.String()).Observe(time.Since(start).Seconds())
	return reply, err
}

func (s *Service) fail(ctx context.Context, tenant string, phase failures.Phase, proto fraud.Protocol, in fraud.Input, cause error) {
	metrics.AnalysesTotal.WithLabelValues(proto.String(), string(phase)+"_error").Inc()

	f := &failures.Failure{
		TenantID:  tenant,
		Phase:     phase,
		Protocol:  proto.String(),
		Message:   cause.Error(),
		CreatedAt: s.now(),
	}
	if in.Attachment != nil {
		f.MIMEType = in.Attachment.MIMEType
	}

	log.WithFields(log.Fields{
		"tenant":   tenant,
		"phase":    phase,
		"protocol": f.Protocol,
		"mime":     f.MIMEType,
	}).WithError(cause).Error("analysis failed")

	if s.Failures == nil {
		return
	}
	if err := s.Failures.Save(ctx, f); err != nil {
		log.WithError(err).Warn("failure log save failed")
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// Get ambil 1 record history by id
func (s *Service) Get(ctx context.Context, tenant string, id history.RecordID) (*history.Record, error) {
	if s.History == nil {
		return nil, ErrHistoryDisabled
	}
	return s.History.Get(ctx, tenant, id)
}

// List returns one page of the tenant's history, newest first.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) ([]*history.Record, error) {
	if s.History == nil {
		return []*history.Record{}, nil
	}
	return s.History.Paginate(ctx, tenant, page, pageSize)
}

// Clear removes every history record of the tenant.
func (s *Service) Clear(ctx context.Context, tenant string) (int64, error) {
	if s.History == nil {
		return 0, nil
	}
	return s.History.Clear(ctx, tenant)
}

// RecentFailures returns the most recent failed analyses of the tenant.
func (s *Service) RecentFailures(ctx context.Context, tenant string, limit int) ([]*failures.Failure, error) {
	if s.Failures == nil {
		return []*failures.Failure{}, nil
	}
	return s.Failures.ListRecent(ctx, tenant, limit)
}

// ErrHistoryDisabled is returned by lookups when no history store is configured.
var ErrHistoryDisabled = errors.New("history is disabled")
