package remotetrigger

const TriggerMessageFeatureName = "TriggerMessage"

type MessageTrigger string

type TriggerMessageStatus string

const (
	TriggerMessageStatusAccepted       TriggerMessageStatus = "Accepted"
	TriggerMessageStatusRejected       TriggerMessageStatus = "Rejected"
	TriggerMessageStatusNotImplemented TriggerMessageStatus = "NotImplemented"
)

const (
	TriggerBootNotification              MessageTrigger = "BootNotification"
	TriggerDiagnosticsStatusNotification MessageTrigger = "DiagnosticsStatusNotification"
	TriggerFirmwareStatusNotification    MessageTrigger = "FirmwareStatusNotification"
	TriggerHeartbeat                     MessageTrigger = "Heartbeat"
	TriggerMeterValues                   MessageTrigger = "MeterValues"
	TriggerStatusNotification            MessageTrigger = "StatusNotification"
)

type TriggerMessageRequest struct {
	RequestedMessage MessageTrigger `json:"requestedMessage" validate:"required,messageTrigger"`
	ConnectorId      *int           `json:"connectorId,omitempty" validate:"omitempty,gt=0"`
}

type TriggerMessageResponse struct {
	Status TriggerMessageStatus `json:"status" validate:"required,triggerMessageStatus"`
}

func (r TriggerMessageRequest) GetFeatureName() string {
	return TriggerMessageFeatureName
}

func (c TriggerMessageResponse) GetFeatureName() string {
	return TriggerMessageFeatureName
}

func NewTriggerMessageRequest(requestedMessage MessageTrigger, connectorId int) *TriggerMessageRequest {
	request := &TriggerMessageRequest{RequestedMessage: requestedMessage}
	if connectorId > 0 {
		request.ConnectorId = &connectorId
	}
	return request
}

func NewTriggerMessageResponse(status TriggerMessageStatus) *TriggerMessageResponse {
	return &TriggerMessageResponse{Status: status}
}
