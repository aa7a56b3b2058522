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

const chatContextLimit = 20

// Chat answers a medication question grounded in the user's verified
// prescriptions and inventory, then appends both sides of the exchange to the
// conversation log.
func (s *Service) Chat(ctx context.Context, userID, query string) (*domain.ChatMessage, error) {
	if query == "" {
		return nil, &domain.InvalidSubmissionError{Reason: "query must not be empty"}
	}

	in := flows.GuidanceInput{Query: query}

	// Context loading is best effort; the assistant can still answer a
	// general question when the store is unavailable.
	prescriptions, err := s.store.ListPrescriptions(ctx, userID, chatContextLimit)
	if err != nil {
		s.logger.Warn("failed to load prescription context for chat",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else {
		for _, p := range prescriptions {
			in.Prescriptions = append(in.Prescriptions, flows.PrescriptionContext{
				Name:        p.Name,
				Date:        p.UploadedAt.Format("2006-01-02"),
				SafetyScore: p.SafetyScore,
				Issues:      p.Issues,
			})
		}
	}

	inventory, err := s.store.ListInventory(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load inventory context for chat",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else {
		for _, item := range inventory {
			in.Medications = append(in.Medications, flows.MedicationContext{
				Name:          item.Name,
				StockQuantity: item.Stock,
				ExpiryDate:    item.ExpiryDate.Format("2006-01-02"),
			})
		}
	}

	response, err := s.guidance.Respond(ctx, in)
	if err != nil {
		return nil, err
	}

	reply := s.appendExchange(ctx, userID, query, response)
	return reply, nil
}

// ListChatMessages returns the user's conversation log in order.
func (s *Service) ListChatMessages(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error) {
	return s.store.ListChatMessages(ctx, userID, limit)
}

// appendExchange writes the user message then the assistant reply with
// server-assigned timestamps, forcing the reply to sort strictly after the
// question. Append failures do not fail the chat call.
func (s *Service) appendExchange(ctx context.Context, userID, query, response string) *domain.ChatMessage {
	userTs := time.Now()
	assistantTs := time.Now()
	if !assistantTs.After(userTs) {
		assistantTs = userTs.Add(time.Microsecond)
	}

	userMsg := &domain.ChatMessage{
		ID:        "msg_" + uuid.New().String()[:8],
		UserID:    userID,
		Sender:    domain.SenderUser,
		Text:      query,
		Timestamp: userTs,
	}
	assistantMsg := &domain.ChatMessage{
		ID:        "msg_" + uuid.New().String()[:8],
		UserID:    userID,
		Sender:    domain.SenderAssistant,
		Text:      response,
		Timestamp: assistantTs,
	}

	for _, msg := range []*domain.ChatMessage{userMsg, assistantMsg} {
		if err := s.store.CreateChatMessage(ctx, msg); err != nil {
			s.metrics.ObserveWriteFailure()
			s.logger.Error("failed to append chat message",
				zap.String("id", msg.ID),
				zap.String("user_id", userID),
				zap.String("sender", string(msg.Sender)),
				zap.Error(err),
			)
			s.notifier.Publish(ctx, notify.Notification{
				UserID:  userID,
				Kind:    "chat_write_failed",
				Message: "Part of your conversation could not be saved to history.",
			})
		}
	}
	return assistantMsg
}
