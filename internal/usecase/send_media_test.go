package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/gohighlevel"
	"github.com/restriden/simpli-immo-sub002/internal/usecase"
)

func crmLinkedLead(id string) *entity.Lead {
	return &entity.Lead{
		ID:            id,
		UserID:        "user-1",
		FirstName:     "Anna",
		LastName:      "Schmidt",
		Status:        entity.LeadStatusNew,
		Source:        entity.LeadSourceApp,
		CrmContactID:  "ghl-contact-42",
		CrmLocationID: "loc-99",
	}
}

func imageInput() usecase.SendMediaInput {
	return usecase.SendMediaInput{
		UserID: "user-1",
		LeadID: "lead-1",
		Media: usecase.MediaPayload{
			Data:        []byte("fake-jpeg-bytes"),
			Filename:    "wohnung.jpg",
			ContentType: "image/jpeg",
		},
		MediaType: "image",
	}
}

// TestSendMediaSuccessWithUpload - uploaded URL goes out as attachment, not text
func TestSendMediaSuccessWithUpload(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)
	mockStorage := new(MockMediaUploader)

	mockLeads.On("FindByID", ctx, "lead-1").Return(crmLinkedLead("lead-1"), nil)
	mockConns.On("FindActiveByLocationID", ctx, "loc-99").Return(activeConnection("user-1"), nil)
	mockStorage.On("UploadMedia", mock.Anything, "lead-1", "wohnung.jpg", "image/jpeg").
		Return("https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg", nil)
	mockCrm.On("SendMessage", ctx, "token-abc", mock.MatchedBy(func(in gohighlevel.SendMessageInput) bool {
		return in.ContactID == "ghl-contact-42" &&
			in.Message == "" &&
			len(in.Attachments) == 1 &&
			in.Attachments[0] == "https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg"
	})).Return(&gohighlevel.SendMessageOutput{ConversationID: "conv-1", MessageID: "msg-777"}, nil)
	mockMessages.On("Create", ctx, mock.Anything).Return(nil)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, mockStorage)

	output, err := uc.Execute(ctx, imageInput())

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.True(t, output.Delivered)
	assert.Equal(t, "msg-777", output.MessageID)
	assert.Equal(t, "https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg", output.MediaURL)
	assert.Empty(t, output.CrmError)

	// The stored row carries the CRM message id and the media metadata
	stored := mockMessages.Calls[0].Arguments[1].(*entity.Message)
	assert.Equal(t, "msg-777", stored.CrmMessageID)
	assert.Equal(t, entity.DirectionOutgoing, stored.Direction)
	assert.Equal(t, "image", stored.CRMData().MediaType)
	assert.Empty(t, stored.CRMData().CrmError)
}

// TestSendMediaUploadFailure - failed upload degrades to a German placeholder
func TestSendMediaUploadFailure(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)
	mockStorage := new(MockMediaUploader)

	mockLeads.On("FindByID", ctx, "lead-1").Return(crmLinkedLead("lead-1"), nil)
	mockConns.On("FindActiveByLocationID", ctx, "loc-99").Return(activeConnection("user-1"), nil)
	mockStorage.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket unreachable"))
	mockCrm.On("SendMessage", ctx, "token-abc", mock.MatchedBy(func(in gohighlevel.SendMessageInput) bool {
		return in.Message == "🎤 Sprachnachricht" && len(in.Attachments) == 0
	})).Return(&gohighlevel.SendMessageOutput{MessageID: "msg-778"}, nil)
	mockMessages.On("Create", ctx, mock.Anything).Return(nil)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, mockStorage)

	input := imageInput()
	input.MediaType = "audio"

	output, err := uc.Execute(ctx, input)

	assert.NoError(t, err)
	assert.True(t, output.Delivered)
	assert.Empty(t, output.MediaURL)
	assert.Equal(t, "msg-778", output.MessageID)

	// The row keeps the placeholder text and records no media URL
	stored := mockMessages.Calls[0].Arguments[1].(*entity.Message)
	assert.Equal(t, "🎤 Sprachnachricht", stored.Content)
	assert.Equal(t, "audio", stored.CRMData().MediaType)
	assert.Empty(t, stored.CRMData().MediaURL)
}

// TestSendMediaWithoutStorage - nil storage behaves like a failed upload
func TestSendMediaWithoutStorage(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)

	mockLeads.On("FindByID", ctx, "lead-1").Return(crmLinkedLead("lead-1"), nil)
	mockConns.On("FindActiveByLocationID", ctx, "loc-99").Return(activeConnection("user-1"), nil)
	mockCrm.On("SendMessage", ctx, "token-abc", mock.MatchedBy(func(in gohighlevel.SendMessageInput) bool {
		return in.Message == "📷 Bild" && len(in.Attachments) == 0
	})).Return(&gohighlevel.SendMessageOutput{MessageID: "msg-779"}, nil)
	mockMessages.On("Create", ctx, mock.Anything).Return(nil)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, nil)

	output, err := uc.Execute(ctx, imageInput())

	assert.NoError(t, err)
	assert.True(t, output.Delivered)
	assert.Empty(t, output.MediaURL)
}

// TestSendMediaCrmRejected - the rejected message is kept locally as pending
// with the CRM error attached
func TestSendMediaCrmRejected(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)
	mockStorage := new(MockMediaUploader)

	mockLeads.On("FindByID", ctx, "lead-1").Return(crmLinkedLead("lead-1"), nil)
	mockConns.On("FindActiveByLocationID", ctx, "loc-99").Return(activeConnection("user-1"), nil)
	mockStorage.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg", nil)
	mockCrm.On("SendMessage", ctx, "token-abc", mock.Anything).
		Return(nil, &gohighlevel.APIError{StatusCode: 403, Body: `{"message":"contact opted out"}`})
	mockMessages.On("Create", ctx, mock.Anything).Return(nil)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, mockStorage)

	output, err := uc.Execute(ctx, imageInput())

	// A CRM rejection is not an error of this operation
	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.False(t, output.Delivered)
	assert.Equal(t, `{"message":"contact opted out"}`, output.CrmError)
	assert.Equal(t, "https://cdn.simpli-immo.de/leads/lead-1/wohnung.jpg", output.MediaURL)
	assert.Empty(t, output.MessageID)

	stored := mockMessages.Calls[0].Arguments[1].(*entity.Message)
	assert.Equal(t, entity.DeliveryStatusPending, stored.DeliveryStatus)
	assert.Equal(t, `{"message":"contact opted out"}`, stored.CRMData().CrmError)
	assert.Empty(t, stored.CrmMessageID)
}

// TestSendMediaPersistFailureAfterCrmRejection - losing both the send and the
// local row is a technical error
func TestSendMediaPersistFailureAfterCrmRejection(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)

	mockLeads.On("FindByID", ctx, "lead-1").Return(crmLinkedLead("lead-1"), nil)
	mockConns.On("FindActiveByLocationID", ctx, "loc-99").Return(activeConnection("user-1"), nil)
	mockCrm.On("SendMessage", ctx, "token-abc", mock.Anything).
		Return(nil, &gohighlevel.APIError{StatusCode: 500, Body: "internal"})
	mockMessages.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, nil)

	output, err := uc.Execute(ctx, imageInput())

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, usecase.IsTechnicalError(err))
}

// TestSendMediaInsertFailureAfterDelivery - delivery wins over bookkeeping;
// the caller gets a warning instead of an error
func TestSendMediaInsertFailureAfterDelivery(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)

	mockLeads.On("FindByID", ctx, "lead-1").Return(crmLinkedLead("lead-1"), nil)
	mockConns.On("FindActiveByLocationID", ctx, "loc-99").Return(activeConnection("user-1"), nil)
	mockCrm.On("SendMessage", ctx, "token-abc", mock.Anything).
		Return(&gohighlevel.SendMessageOutput{MessageID: "msg-780"}, nil)
	mockMessages.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, nil)

	output, err := uc.Execute(ctx, imageInput())

	assert.NoError(t, err)
	assert.True(t, output.Delivered)
	assert.Equal(t, "msg-780", output.MessageID)
	assert.NotEmpty(t, output.Warning)
}

// TestSendMediaLeadNotLinked - leads without a CRM contact cannot receive media
func TestSendMediaLeadNotLinked(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)

	unlinked := crmLinkedLead("lead-1")
	unlinked.CrmContactID = ""

	mockLeads.On("FindByID", ctx, "lead-1").Return(unlinked, nil)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, nil)

	output, err := uc.Execute(ctx, imageInput())

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, usecase.IsDomainError(err))

	mockConns.AssertNotCalled(t, "FindActiveByLocationID")
	mockCrm.AssertNotCalled(t, "SendMessage")
	mockMessages.AssertNotCalled(t, "Create")
}

// TestSendMediaLeadNotFound
func TestSendMediaLeadNotFound(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)

	mockLeads.On("FindByID", ctx, "lead-1").Return(nil, entity.ErrLeadNotFound)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, nil)

	output, err := uc.Execute(ctx, imageInput())

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, usecase.IsDomainError(err))
	mockCrm.AssertNotCalled(t, "SendMessage")
}

// TestSendMediaValidationFailure - empty file data never leaves the service
func TestSendMediaValidationFailure(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockMessages := new(MockMessageRepository)
	mockConns := new(MockConnectionRepository)
	mockCrm := new(MockCrmGateway)

	uc := usecase.NewSendMediaUseCase(mockLeads, mockMessages, mockConns, mockCrm, nil)

	input := imageInput()
	input.Media.Data = nil

	output, err := uc.Execute(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, usecase.IsDomainError(err))
	mockLeads.AssertNotCalled(t, "FindByID")
}
