package core

import "evgate/types"

const AuthorizeFeatureName = "Authorize"

type AuthorizeRequest struct {
	IdTag string `json:"idTag" validate:"required,max=20"`
}

type AuthorizeResponse struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo" validate:"required"`
}

func (r AuthorizeRequest) GetFeatureName() string {
	return AuthorizeFeatureName
}

func (c AuthorizeResponse) GetFeatureName() string {
	return AuthorizeFeatureName
}

func NewAuthorizationResponse(idTagInfo *types.IdTagInfo) *AuthorizeResponse {
	return &AuthorizeResponse{IdTagInfo: idTagInfo}
}
