package security

import "evgate/types"

const SignedUpdateFirmwareFeatureName = "SignedUpdateFirmware"

type UpdateFirmwareStatus string

const (
	UpdateFirmwareStatusAccepted           UpdateFirmwareStatus = "Accepted"
	UpdateFirmwareStatusRejected           UpdateFirmwareStatus = "Rejected"
	UpdateFirmwareStatusInvalidCertificate UpdateFirmwareStatus = "InvalidCertificate"
)

type FirmwareType struct {
	Location           string          `json:"location" validate:"required,max=512"`
	RetrieveDateTime   *types.DateTime `json:"retrieveDateTime" validate:"required"`
	InstallDateTime    *types.DateTime `json:"installDateTime,omitempty"`
	SigningCertificate string          `json:"signingCertificate" validate:"required,max=5500"`
	Signature          string          `json:"signature" validate:"required,max=800"`
}

type SignedUpdateFirmwareRequest struct {
	Retries       *int          `json:"retries,omitempty" validate:"omitempty,gte=0"`
	RetryInterval *int          `json:"retryInterval,omitempty" validate:"omitempty,gte=0"`
	RequestId     int           `json:"requestId"`
	Firmware      *FirmwareType `json:"firmware" validate:"required"`
}

type SignedUpdateFirmwareResponse struct {
	Status UpdateFirmwareStatus `json:"status" validate:"required,updateFirmwareStatus"`
}

func (r SignedUpdateFirmwareRequest) GetFeatureName() string {
	return SignedUpdateFirmwareFeatureName
}

func (c SignedUpdateFirmwareResponse) GetFeatureName() string {
	return SignedUpdateFirmwareFeatureName
}

func NewSignedUpdateFirmwareRequest(requestId int, firmware *FirmwareType) *SignedUpdateFirmwareRequest {
	return &SignedUpdateFirmwareRequest{RequestId: requestId, Firmware: firmware}
}

func NewSignedUpdateFirmwareResponse(status UpdateFirmwareStatus) *SignedUpdateFirmwareResponse {
	return &SignedUpdateFirmwareResponse{Status: status}
}
