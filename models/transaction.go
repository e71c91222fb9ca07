package models

import "time"

type Transaction struct {
	Id            int       `json:"transaction_id" bson:"transaction_id"`
	IsFinished    bool      `json:"is_finished" bson:"is_finished"`
	ConnectorId   int       `json:"connector_id" bson:"connector_id"`
	ChargeBoxId   string    `json:"charge_box_id" bson:"charge_box_id"`
	IdTag         string    `json:"id_tag" bson:"id_tag"`
	ReservationId *int      `json:"reservation_id,omitempty" bson:"reservation_id"`
	MeterStart    int       `json:"meter_start" bson:"meter_start"`
	MeterStop     int       `json:"meter_stop" bson:"meter_stop"`
	TimeStart     time.Time `json:"time_start" bson:"time_start"`
	TimeStop      time.Time `json:"time_stop" bson:"time_stop"`
	Reason        string    `json:"reason" bson:"reason"`
}

func (t *Transaction) DataType() string {
	return "transaction"
}
