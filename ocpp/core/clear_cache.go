package core

const ClearCacheFeatureName = "ClearCache"

type ClearCacheStatus string

const (
	ClearCacheStatusAccepted ClearCacheStatus = "Accepted"
	ClearCacheStatusRejected ClearCacheStatus = "Rejected"
)

type ClearCacheRequest struct {
}

type ClearCacheResponse struct {
	Status ClearCacheStatus `json:"status" validate:"required,clearCacheStatus"`
}

func (r ClearCacheRequest) GetFeatureName() string {
	return ClearCacheFeatureName
}

func (c ClearCacheResponse) GetFeatureName() string {
	return ClearCacheFeatureName
}

func NewClearCacheRequest() *ClearCacheRequest {
	return &ClearCacheRequest{}
}

func NewClearCacheResponse(status ClearCacheStatus) *ClearCacheResponse {
	return &ClearCacheResponse{Status: status}
}
