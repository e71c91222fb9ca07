package security

import "evgate/ocpp/remotetrigger"

const ExtendedTriggerMessageFeatureName = "ExtendedTriggerMessage"

type ExtendedTriggerMessageRequest struct {
	RequestedMessage remotetrigger.MessageTrigger `json:"requestedMessage" validate:"required,messageTrigger"`
	ConnectorId      *int                         `json:"connectorId,omitempty" validate:"omitempty,gt=0"`
}

type ExtendedTriggerMessageResponse struct {
	Status remotetrigger.TriggerMessageStatus `json:"status" validate:"required,triggerMessageStatus"`
}

func (r ExtendedTriggerMessageRequest) GetFeatureName() string {
	return ExtendedTriggerMessageFeatureName
}

func (c ExtendedTriggerMessageResponse) GetFeatureName() string {
	return ExtendedTriggerMessageFeatureName
}

func NewExtendedTriggerMessageRequest(requestedMessage remotetrigger.MessageTrigger, connectorId int) *ExtendedTriggerMessageRequest {
	request := &ExtendedTriggerMessageRequest{RequestedMessage: requestedMessage}
	if connectorId > 0 {
		request.ConnectorId = &connectorId
	}
	return request
}
