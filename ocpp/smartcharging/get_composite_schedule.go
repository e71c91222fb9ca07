package smartcharging

import "evgate/types"

const GetCompositeScheduleFeatureName = "GetCompositeSchedule"

type GetCompositeScheduleStatus string

const (
	GetCompositeScheduleStatusAccepted GetCompositeScheduleStatus = "Accepted"
	GetCompositeScheduleStatusRejected GetCompositeScheduleStatus = "Rejected"
)

type GetCompositeScheduleRequest struct {
	ConnectorId      int                        `json:"connectorId" validate:"gte=0"`
	Duration         int                        `json:"duration" validate:"gte=0"`
	ChargingRateUnit types.ChargingRateUnitType `json:"chargingRateUnit,omitempty" validate:"omitempty,chargingRateUnit"`
}

type GetCompositeScheduleResponse struct {
	Status           GetCompositeScheduleStatus `json:"status" validate:"required,getCompositeScheduleStatus"`
	ConnectorId      *int                       `json:"connectorId,omitempty" validate:"omitempty,gte=0"`
	ScheduleStart    *types.DateTime            `json:"scheduleStart,omitempty"`
	ChargingSchedule *types.ChargingSchedule    `json:"chargingSchedule,omitempty"`
}

func (r GetCompositeScheduleRequest) GetFeatureName() string {
	return GetCompositeScheduleFeatureName
}

func (c GetCompositeScheduleResponse) GetFeatureName() string {
	return GetCompositeScheduleFeatureName
}

func NewGetCompositeScheduleRequest(connectorId int, duration int) *GetCompositeScheduleRequest {
	return &GetCompositeScheduleRequest{ConnectorId: connectorId, Duration: duration}
}

func NewGetCompositeScheduleResponse(status GetCompositeScheduleStatus) *GetCompositeScheduleResponse {
	return &GetCompositeScheduleResponse{Status: status}
}
