package firmware

import "evgate/types"

const GetDiagnosticsFeatureName = "GetDiagnostics"

type GetDiagnosticsRequest struct {
	Location      string          `json:"location" validate:"required,uri"`
	Retries       *int            `json:"retries,omitempty" validate:"omitempty,gte=0"`
	RetryInterval *int            `json:"retryInterval,omitempty" validate:"omitempty,gte=0"`
	StartTime     *types.DateTime `json:"startTime,omitempty"`
	StopTime      *types.DateTime `json:"stopTime,omitempty"`
}

type GetDiagnosticsResponse struct {
	FileName string `json:"fileName,omitempty" validate:"max=255"`
}

func (r GetDiagnosticsRequest) GetFeatureName() string {
	return GetDiagnosticsFeatureName
}

func (c GetDiagnosticsResponse) GetFeatureName() string {
	return GetDiagnosticsFeatureName
}

func NewGetDiagnosticsRequest(location string) *GetDiagnosticsRequest {
	return &GetDiagnosticsRequest{Location: location}
}

func NewGetDiagnosticsResponse(fileName string) *GetDiagnosticsResponse {
	return &GetDiagnosticsResponse{FileName: fileName}
}
