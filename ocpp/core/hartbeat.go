package core

import "evgate/types"

const HeartbeatFeatureName = "Heartbeat"

type HeartbeatRequest struct {
}

type HeartbeatResponse struct {
	CurrentTime *types.DateTime `json:"currentTime" validate:"required"`
}

func (req HeartbeatRequest) GetFeatureName() string {
	return HeartbeatFeatureName
}

func (res HeartbeatResponse) GetFeatureName() string {
	return HeartbeatFeatureName
}

func NewHeartbeatRequest() *HeartbeatRequest {
	return &HeartbeatRequest{}
}

func NewHeartbeatResponse(currentTime *types.DateTime) *HeartbeatResponse {
	return &HeartbeatResponse{CurrentTime: currentTime}
}
