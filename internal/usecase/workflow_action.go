package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/queue"
)

const ActionMaklerNotified = "makler_notified"

// Workflow triggers spell the action differently depending on how the
// automation was built; everything here collapses to the canonical name
// after lowercasing and stripping punctuation.
var actionSynonyms = map[string]string{
	"maklernotified":       ActionMaklerNotified,
	"maklerbenachrichtigt": ActionMaklerNotified,
	"notifymakler":         ActionMaklerNotified,
	"agentnotified":        ActionMaklerNotified,
}

// NormalizeWorkflowPayload turns a loosely shaped webhook body into one
// canonical event. All field alias handling lives here and nowhere else.
func NormalizeWorkflowPayload(raw []byte) (WorkflowEvent, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return WorkflowEvent{}, err
	}

	event := WorkflowEvent{
		ContactID:  stringField(data, "contact_id", "contactId"),
		LocationID: stringField(data, "location_id", "locationId"),
		Action:     stringField(data, "action", "type"),
	}

	if event.ContactID == "" {
		if contact, ok := data["contact"].(map[string]interface{}); ok {
			if id, ok := contact["id"].(string); ok {
				event.ContactID = id
			}
		}
	}

	event.Timestamp = parseTimestamp(data["timestamp"])

	return event, nil
}

func stringField(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// parseTimestamp accepts RFC3339 strings and numeric epochs (seconds or
// milliseconds). Anything else yields the zero time and the caller falls
// back to now.
func parseTimestamp(v interface{}) time.Time {
	switch t := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts
			}
		}
	case float64:
		if t > 1e12 {
			return time.UnixMilli(int64(t))
		}
		if t > 0 {
			return time.Unix(int64(t), 0)
		}
	}
	return time.Time{}
}

// canonicalAction resolves the raw action against the synonym set. An empty
// action means the default notification action.
func canonicalAction(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return ActionMaklerNotified, true
	}

	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	action, ok := actionSynonyms[b.String()]
	return action, ok
}

// WorkflowActionUseCase applies CRM workflow events to leads. It never
// creates leads; events for unknown contacts are rejected.
type WorkflowActionUseCase struct {
	Leads LeadRepositoryInterface
	Queue QueueProducerInterface // nil disables the notification fan-out
}

func NewWorkflowActionUseCase(leads LeadRepositoryInterface, producer QueueProducerInterface) *WorkflowActionUseCase {
	return &WorkflowActionUseCase{
		Leads: leads,
		Queue: producer,
	}
}

func (uc *WorkflowActionUseCase) Execute(ctx context.Context, event WorkflowEvent) (*WorkflowActionOutput, error) {
	if event.ContactID == "" {
		return nil, &DomainError{
			Code:    CodeMissingContactID,
			Message: "contact id is missing from the payload",
		}
	}

	lead, err := uc.Leads.FindByCrmContactID(ctx, event.ContactID, event.LocationID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{
				Code:    CodeLeadNotFound,
				Message: fmt.Sprintf("no lead for CRM contact %s", event.ContactID),
			}
		}
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "lead lookup failed"}
	}

	action, known := canonicalAction(event.Action)
	if !known {
		log.Printf("⚠️ Unknown workflow action %q for lead %s, ignoring", event.Action, lead.ID)
		return &WorkflowActionOutput{
			Success: false,
			Error:   "Unknown action: " + event.Action,
		}, nil
	}

	// Last write wins: replays and out-of-order deliveries just restate
	// the timestamp.
	notifiedAt := event.Timestamp
	if notifiedAt.IsZero() {
		notifiedAt = time.Now()
	}

	if err := uc.Leads.SetMaklerNotified(ctx, lead.ID, notifiedAt); err != nil {
		return nil, &TechnicalError{Code: CodeDatabaseError, Message: "could not update makler notification timestamp"}
	}

	if uc.Queue != nil {
		payload := queue.LeadNotificationPayload{
			LeadID:     lead.ID,
			LeadName:   lead.FullName(),
			UserID:     lead.UserID,
			Action:     action,
			NotifiedAt: notifiedAt,
		}
		if err := uc.Queue.PublishLeadNotification(ctx, payload); err != nil {
			log.Printf("⚠️ CRITICAL: lead %s marked notified but queue publish failed: %v", lead.ID, err)
		}
	}

	log.Printf("✅ Makler notification recorded for lead %s (%s)", lead.ID, action)

	return &WorkflowActionOutput{
		Success:    true,
		Action:     action,
		LeadID:     lead.ID,
		LeadName:   lead.FullName(),
		NotifiedAt: &notifiedAt,
	}, nil
}
