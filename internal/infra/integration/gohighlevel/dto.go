package gohighlevel

type CreateContactInput struct {
	LocationID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Source     string
	Tags       []string
}

type ContactOutput struct {
	ID         string
	LocationID string
}

type SendMessageInput struct {
	ContactID   string
	Message     string
	Attachments []string
	Type        string // defaults to WhatsApp
}

type SendMessageOutput struct {
	MessageID      string
	ConversationID string
}

// --- Internal payloads: what goes over the wire ---

// Optional contact fields carry omitempty so the CRM only ever sees the
// fields the caller actually filled in.
type createContactRequest struct {
	LocationID string   `json:"locationId"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Source     string   `json:"source,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type contactResponse struct {
	Contact struct {
		ID         string `json:"id"`
		LocationID string `json:"locationId"`
	} `json:"contact"`
}

type sendMessageRequest struct {
	Type        string   `json:"type"`
	ContactID   string   `json:"contactId"`
	Message     string   `json:"message,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

type sendMessageResponse struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	Msg            string `json:"msg"`
}
