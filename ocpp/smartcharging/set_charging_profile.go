package smartcharging

import "evgate/types"

const SetChargingProfileFeatureName = "SetChargingProfile"

type ChargingProfileStatus string

const (
	ChargingProfileStatusAccepted     ChargingProfileStatus = "Accepted"
	ChargingProfileStatusRejected     ChargingProfileStatus = "Rejected"
	ChargingProfileStatusNotSupported ChargingProfileStatus = "NotSupported"
)

type SetChargingProfileRequest struct {
	ConnectorId     int                    `json:"connectorId" validate:"gte=0"`
	ChargingProfile *types.ChargingProfile `json:"csChargingProfiles" validate:"required"`
}

type SetChargingProfileResponse struct {
	Status ChargingProfileStatus `json:"status" validate:"required,chargingProfileStatus"`
}

func (r SetChargingProfileRequest) GetFeatureName() string {
	return SetChargingProfileFeatureName
}

func (c SetChargingProfileResponse) GetFeatureName() string {
	return SetChargingProfileFeatureName
}

func NewSetChargingProfileRequest(connectorId int, chargingProfile *types.ChargingProfile) *SetChargingProfileRequest {
	return &SetChargingProfileRequest{ConnectorId: connectorId, ChargingProfile: chargingProfile}
}

func NewSetChargingProfileResponse(status ChargingProfileStatus) *SetChargingProfileResponse {
	return &SetChargingProfileResponse{Status: status}
}
