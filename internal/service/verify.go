package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediguard/internal/domain"
	"mediguard/internal/flows"
	"mediguard/internal/notify"
)

// VerificationResult pairs the merged prescription record with the policy
// verdict on whether a pharmacist should look at it. The verdict is derived,
// not persisted.
type VerificationResult struct {
	Prescription   *domain.Prescription `json:"prescription"`
	ReviewRequired bool                 `json:"reviewRequired"`
}

// VerifyPrescription runs one verification attempt: safety scoring always,
// detail extraction concurrently when an image is present, then merge and an
// asynchronous store write. The merged record is returned optimistically;
// write failures surface through the notifier, not through this call.
func (s *Service) VerifyPrescription(ctx context.Context, sub domain.PrescriptionSubmission, userID string) (*VerificationResult, error) {
	if err := checkSubmission(sub); err != nil {
		s.metrics.ObserveVerification("invalid")
		return nil, err
	}

	type safetyResult struct {
		assessment *domain.SafetyAssessment
		err        error
	}
	type extractionResult struct {
		details *domain.ExtractionResult
		err     error
	}

	safetyCh := make(chan safetyResult, 1)
	go func() {
		assessment, err := s.safety.Score(ctx, flows.SafetyInput{Text: sub.Text, Image: sub.Image})
		safetyCh <- safetyResult{assessment, err}
	}()

	// Extraction only runs for image submissions; there is no text-only mode.
	var extractionCh chan extractionResult
	if sub.Image != "" {
		extractionCh = make(chan extractionResult, 1)
		go func() {
			details, err := s.extract.Extract(ctx, sub.Image)
			extractionCh <- extractionResult{details, err}
		}()
	}

	safety := <-safetyCh

	var extraction *domain.ExtractionResult
	if extractionCh != nil {
		res := <-extractionCh
		if res.err != nil {
			// The safety result is never discarded because extraction
			// failed; the record falls back to the unknown defaults.
			s.logger.Warn("detail extraction failed, using defaults",
				zap.String("user_id", userID),
				zap.Error(res.err),
			)
		} else {
			extraction = res.details
		}
	}

	if safety.err != nil {
		s.metrics.ObserveVerification("failed")
		return nil, &domain.VerificationFailedError{Err: safety.err}
	}

	prescription := mergePrescription(sub, userID, safety.assessment, extraction)

	reviewRequired := false
	if s.policy != nil {
		isFake := extraction != nil && extraction.IsFake
		verdict, err := s.policy.ReviewRequired(ctx, prescription.SafetyScore, isFake, s.config.ReviewThreshold)
		if err != nil {
			s.logger.Warn("review policy evaluation failed", zap.Error(err))
		} else {
			reviewRequired = verdict
		}
	}

	go s.persistPrescription(prescription)

	s.metrics.ObserveVerification("ok")
	return &VerificationResult{Prescription: prescription, ReviewRequired: reviewRequired}, nil
}

// ScorePrescription is the score-only mode: same scoring leg as a full
// verification but nothing is extracted or persisted.
func (s *Service) ScorePrescription(ctx context.Context, sub domain.PrescriptionSubmission) (*domain.SafetyAssessment, error) {
	if err := checkSubmission(sub); err != nil {
		return nil, err
	}
	return s.safety.Score(ctx, flows.SafetyInput{Text: sub.Text, Image: sub.Image})
}

// ListPrescriptions returns the user's verified prescriptions, newest first.
func (s *Service) ListPrescriptions(ctx context.Context, userID string, limit int) ([]domain.Prescription, error) {
	return s.store.ListPrescriptions(ctx, userID, limit)
}

func checkSubmission(sub domain.PrescriptionSubmission) error {
	if sub.Empty() {
		return &domain.InvalidSubmissionError{Reason: "neither prescription text nor image was provided"}
	}
	if sub.Image != "" && !domain.IsDataURI(sub.Image) {
		return &domain.InvalidSubmissionError{Reason: "prescription image must be a data:<mimetype>;base64,<data> URI"}
	}
	return nil
}

func mergePrescription(sub domain.PrescriptionSubmission, userID string, assessment *domain.SafetyAssessment, extraction *domain.ExtractionResult) *domain.Prescription {
	name, provider := domain.UnknownMedication, domain.UnknownProvider
	if extraction != nil {
		if extraction.MedicationName != "" {
			name = extraction.MedicationName
		}
		if extraction.Provider != "" {
			provider = extraction.Provider
		}
	}
	sourceText := sub.Text
	if sourceText == "" {
		sourceText = "[image submission]"
	}
	return &domain.Prescription{
		ID:          "rx_" + uuid.New().String()[:8],
		UserID:      userID,
		Name:        name,
		Provider:    provider,
		SafetyScore: assessment.SafetyScore,
		Issues:      assessment.Issues,
		SourceText:  sourceText,
		UploadedAt:  time.Now(),
	}
}

// persistPrescription performs the store write behind the optimistic return.
// The original caller may be gone, so the write gets its own context; a
// failure is routed to the user's notification queue.
func (s *Service) persistPrescription(p *domain.Prescription) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.PersistTimeout)
	defer cancel()

	if err := s.store.CreatePrescription(ctx, p); err != nil {
		s.metrics.ObserveWriteFailure()
		s.logger.Error("failed to persist prescription",
			zap.String("id", p.ID),
			zap.String("user_id", p.UserID),
			zap.Error(err),
		)
		s.notifier.Publish(ctx, notify.Notification{
			UserID:  p.UserID,
			Kind:    "prescription_write_failed",
			Message: "Your verification result could not be saved. It may not appear in your history.",
		})
		return
	}
	s.logger.Debug("prescription persisted",
		zap.String("id", p.ID),
		zap.String("user_id", p.UserID),
	)
}
