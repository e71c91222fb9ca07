package core

import "evgate/types"

const BootNotificationFeatureName = "BootNotification"

// RegistrationStatus Result of registration in response to a BootNotification request.
type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

type BootNotificationRequest struct {
	ChargePointVendor       string `json:"chargePointVendor" validate:"required,max=20"`
	ChargePointModel        string `json:"chargePointModel" validate:"required,max=20"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber,omitempty" validate:"max=25"`
	ChargeBoxSerialNumber   string `json:"chargeBoxSerialNumber,omitempty" validate:"max=25"`
	FirmwareVersion         string `json:"firmwareVersion,omitempty" validate:"max=50"`
	Iccid                   string `json:"iccid,omitempty" validate:"max=20"`
	Imsi                    string `json:"imsi,omitempty" validate:"max=20"`
	MeterType               string `json:"meterType,omitempty" validate:"max=25"`
	MeterSerialNumber       string `json:"meterSerialNumber,omitempty" validate:"max=25"`
}

type BootNotificationResponse struct {
	CurrentTime *types.DateTime    `json:"currentTime" validate:"required"`
	Interval    int                `json:"interval" validate:"gte=0"`
	Status      RegistrationStatus `json:"status" validate:"required,registrationStatus"`
}

func (r BootNotificationRequest) GetFeatureName() string {
	return BootNotificationFeatureName
}

func (c BootNotificationResponse) GetFeatureName() string {
	return BootNotificationFeatureName
}

// NewBootNotificationResponse Creates a new BootNotificationResponse. There are no optional fields for this message.
func NewBootNotificationResponse(currentTime *types.DateTime, interval int, status RegistrationStatus) *BootNotificationResponse {
	return &BootNotificationResponse{CurrentTime: currentTime, Interval: interval, Status: status}
}
