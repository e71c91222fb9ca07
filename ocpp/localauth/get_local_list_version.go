package localauth

const GetLocalListVersionFeatureName = "GetLocalListVersion"

type GetLocalListVersionRequest struct {
}

type GetLocalListVersionResponse struct {
	ListVersion int `json:"listVersion" validate:"gte=-1"`
}

func (r GetLocalListVersionRequest) GetFeatureName() string {
	return GetLocalListVersionFeatureName
}

func (c GetLocalListVersionResponse) GetFeatureName() string {
	return GetLocalListVersionFeatureName
}

func NewGetLocalListVersionRequest() *GetLocalListVersionRequest {
	return &GetLocalListVersionRequest{}
}

func NewGetLocalListVersionResponse(version int) *GetLocalListVersionResponse {
	return &GetLocalListVersionResponse{ListVersion: version}
}
