package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediguard/internal/domain"
	"mediguard/internal/flows"
)

func TestVerifyPrescriptionText(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 95,
		"issues":      []string{},
	})

	result, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Text: "Lisinopril 10mg daily"}, "u1")
	require.NoError(t, err)

	p := result.Prescription
	assert.Equal(t, 95, p.SafetyScore)
	assert.Equal(t, domain.UnknownMedication, p.Name)
	assert.Equal(t, domain.UnknownProvider, p.Provider)
	assert.Equal(t, "Lisinopril 10mg daily", p.SourceText)
	assert.False(t, result.ReviewRequired)
	assert.Equal(t, 0, env.mock.Calls(flows.ExtractDetailsCapability.Name),
		"text-only submission must not trigger extraction")

	// The write is asynchronous; it lands shortly after the return.
	require.Eventually(t, func() bool {
		got, err := env.store.ListPrescriptions(context.Background(), "u1", 10)
		return err == nil && len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	got, err := env.store.ListPrescriptions(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got[0].ID)
}

func TestVerifyPrescriptionImage(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 75,
		"issues":      []string{"possible interaction with warfarin"},
	})
	env.mock.Script(flows.ExtractDetailsCapability.Name, map[string]any{
		"name":     "Metformin 500mg",
		"provider": "Dr. Lee",
		"isFake":   false,
	})

	result, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Image: testImage}, "u1")
	require.NoError(t, err)

	p := result.Prescription
	assert.Equal(t, "Metformin 500mg", p.Name)
	assert.Equal(t, "Dr. Lee", p.Provider)
	assert.Equal(t, 75, p.SafetyScore)
	assert.Equal(t, []string{"possible interaction with warfarin"}, p.Issues)
	assert.Equal(t, "[image submission]", p.SourceText)
}

func TestVerifyPrescriptionEmptySubmission(t *testing.T) {
	env := newTestService(t, nil)

	_, err := env.svc.VerifyPrescription(context.Background(), domain.PrescriptionSubmission{}, "u1")

	var invalid *domain.InvalidSubmissionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, env.mock.Calls(flows.SafetyScoreCapability.Name))
}

func TestVerifyPrescriptionRejectsPlainURL(t *testing.T) {
	env := newTestService(t, nil)

	_, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Image: "http://example.com/rx.png"}, "u1")

	var invalid *domain.InvalidSubmissionError
	require.ErrorAs(t, err, &invalid)
}

func TestVerifyPrescriptionExtractionDegrades(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 80,
		"issues":      []string{},
	})
	env.mock.ScriptError(flows.ExtractDetailsCapability.Name, errors.New("timeout"))

	result, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Image: testImage}, "u1")
	require.NoError(t, err, "extraction failure must not fail the verification")

	assert.Equal(t, domain.UnknownMedication, result.Prescription.Name)
	assert.Equal(t, domain.UnknownProvider, result.Prescription.Provider)
	assert.Equal(t, 80, result.Prescription.SafetyScore)
}

func TestVerifyPrescriptionSafetyFailureIsFatal(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.ScriptError(flows.SafetyScoreCapability.Name, errors.New("model overloaded"))
	env.mock.Script(flows.ExtractDetailsCapability.Name, map[string]any{
		"name": "Metformin", "provider": "Dr. Lee", "isFake": false,
	})

	_, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Image: testImage}, "u1")

	var failed *domain.VerificationFailedError
	require.ErrorAs(t, err, &failed)

	// Nothing may be written for a failed verification.
	time.Sleep(50 * time.Millisecond)
	got, err := env.store.ListPrescriptions(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVerifyPrescriptionReviewRequired(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 30,
		"issues":      []string{"dosage exceeds recommended maximum"},
	})

	result, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Text: "something risky"}, "u1")
	require.NoError(t, err)
	assert.True(t, result.ReviewRequired, "low score must be flagged for review")
}

func TestVerifyPrescriptionFakeRequiresReview(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 90,
		"issues":      []string{},
	})
	env.mock.Script(flows.ExtractDetailsCapability.Name, map[string]any{
		"name":      "Oxycodone 30mg",
		"provider":  "Unknown Clinic",
		"isFake":    true,
		"reasoning": "signature field is empty and letterhead looks copied",
	})

	result, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Image: testImage}, "u1")
	require.NoError(t, err)
	assert.True(t, result.ReviewRequired, "suspected fake must be flagged regardless of score")
}

func TestVerifyPrescriptionWriteFailureNotifies(t *testing.T) {
	base := newTestService(t, nil)
	env := newTestService(t, &failingStore{Store: base.store, failPrescriptions: true})
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 90,
		"issues":      []string{},
	})

	result, err := env.svc.VerifyPrescription(context.Background(),
		domain.PrescriptionSubmission{Text: "Lisinopril 10mg"}, "u1")
	require.NoError(t, err, "write failure must not fail the optimistic return")
	require.NotNil(t, result.Prescription)

	require.Eventually(t, func() bool {
		// Drain clears the queue, so only probe until something arrives.
		notifications := env.notifier.Drain("u1")
		return len(notifications) == 1 && notifications[0].Kind == "prescription_write_failed"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScorePrescriptionDoesNotPersist(t *testing.T) {
	env := newTestService(t, nil)
	env.mock.Script(flows.SafetyScoreCapability.Name, map[string]any{
		"safetyScore": 88,
		"issues":      []string{},
	})

	assessment, err := env.svc.ScorePrescription(context.Background(),
		domain.PrescriptionSubmission{Text: "Lisinopril 10mg"})
	require.NoError(t, err)
	assert.Equal(t, 88, assessment.SafetyScore)

	time.Sleep(50 * time.Millisecond)
	got, err := env.store.ListPrescriptions(context.Background(), "demo-user", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
