package core

const UnlockConnectorFeatureName = "UnlockConnector"

type UnlockStatus string

const (
	UnlockStatusUnlocked     UnlockStatus = "Unlocked"
	UnlockStatusUnlockFailed UnlockStatus = "UnlockFailed"
	UnlockStatusNotSupported UnlockStatus = "NotSupported"
)

type UnlockConnectorRequest struct {
	ConnectorId int `json:"connectorId" validate:"gt=0"`
}

type UnlockConnectorResponse struct {
	Status UnlockStatus `json:"status" validate:"required,unlockStatus"`
}

func (r UnlockConnectorRequest) GetFeatureName() string {
	return UnlockConnectorFeatureName
}

func (c UnlockConnectorResponse) GetFeatureName() string {
	return UnlockConnectorFeatureName
}

func NewUnlockConnectorRequest(connectorId int) *UnlockConnectorRequest {
	return &UnlockConnectorRequest{ConnectorId: connectorId}
}

func NewUnlockConnectorResponse(status UnlockStatus) *UnlockConnectorResponse {
	return &UnlockConnectorResponse{Status: status}
}
