package security

import "evgate/types"

const GetLogFeatureName = "GetLog"

type LogType string
type LogStatus string

const (
	LogTypeDiagnostics             LogType   = "DiagnosticsLog"
	LogTypeSecurity                LogType   = "SecurityLog"
	LogStatusAccepted              LogStatus = "Accepted"
	LogStatusRejected              LogStatus = "Rejected"
	LogStatusAcceptedCanceled      LogStatus = "AcceptedCanceled"
)

type LogParameters struct {
	RemoteLocation  string          `json:"remoteLocation" validate:"required,max=512"`
	OldestTimestamp *types.DateTime `json:"oldestTimestamp,omitempty"`
	LatestTimestamp *types.DateTime `json:"latestTimestamp,omitempty"`
}

type GetLogRequest struct {
	LogType       LogType        `json:"logType" validate:"required,logType"`
	RequestId     int            `json:"requestId"`
	Retries       *int           `json:"retries,omitempty" validate:"omitempty,gte=0"`
	RetryInterval *int           `json:"retryInterval,omitempty" validate:"omitempty,gte=0"`
	Log           *LogParameters `json:"log" validate:"required"`
}

type GetLogResponse struct {
	Status   LogStatus `json:"status" validate:"required,logStatus"`
	Filename string    `json:"filename,omitempty" validate:"max=255"`
}

func (r GetLogRequest) GetFeatureName() string {
	return GetLogFeatureName
}

func (c GetLogResponse) GetFeatureName() string {
	return GetLogFeatureName
}

func NewGetLogRequest(logType LogType, requestId int, log *LogParameters) *GetLogRequest {
	return &GetLogRequest{LogType: logType, RequestId: requestId, Log: log}
}

func NewGetLogResponse(status LogStatus) *GetLogResponse {
	return &GetLogResponse{Status: status}
}
