package models

type ChargeBox struct {
	Id              string `json:"charge_box_id" bson:"charge_box_id"`
	IsEnabled       bool   `json:"is_enabled" bson:"is_enabled"`
	Title           string `json:"title" bson:"title"`
	Model           string `json:"model" bson:"model"`
	Vendor          string `json:"vendor" bson:"vendor"`
	SerialNumber    string `json:"serial_number" bson:"serial_number"`
	FirmwareVersion string `json:"firmware_version" bson:"firmware_version"`
	Status          string `json:"status" bson:"status"`
	ErrorCode       string `json:"error_code" bson:"error_code"`
	Info            string `json:"info" bson:"info"`
}

func (cb *ChargeBox) DataType() string {
	return "chargeBox"
}
