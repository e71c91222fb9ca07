package smartcharging

import "evgate/types"

const ClearChargingProfileFeatureName = "ClearChargingProfile"

type ClearChargingProfileStatus string

const (
	ClearChargingProfileStatusAccepted ClearChargingProfileStatus = "Accepted"
	ClearChargingProfileStatusUnknown  ClearChargingProfileStatus = "Unknown"
)

type ClearChargingProfileRequest struct {
	Id                     *int                             `json:"id,omitempty" validate:"omitempty"`
	ConnectorId            *int                             `json:"connectorId,omitempty" validate:"omitempty,gte=0"`
	ChargingProfilePurpose types.ChargingProfilePurposeType `json:"chargingProfilePurpose,omitempty" validate:"omitempty,chargingProfilePurpose"`
	StackLevel             *int                             `json:"stackLevel,omitempty" validate:"omitempty,gte=0"`
}

type ClearChargingProfileResponse struct {
	Status ClearChargingProfileStatus `json:"status" validate:"required,clearChargingProfileStatus"`
}

func (r ClearChargingProfileRequest) GetFeatureName() string {
	return ClearChargingProfileFeatureName
}

func (c ClearChargingProfileResponse) GetFeatureName() string {
	return ClearChargingProfileFeatureName
}

func NewClearChargingProfileRequest() *ClearChargingProfileRequest {
	return &ClearChargingProfileRequest{}
}

func NewClearChargingProfileResponse(status ClearChargingProfileStatus) *ClearChargingProfileResponse {
	return &ClearChargingProfileResponse{Status: status}
}
