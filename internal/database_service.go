package internal

import "evgate/models"

type Database interface {
	WriteLogMessage(data Data) error
	GetChargeBoxes() ([]models.ChargeBox, error)
	GetConnectors() ([]*models.Connector, error)
	AddChargeBox(chargeBox *models.ChargeBox) error
	UpdateChargeBox(chargeBox *models.ChargeBox) error
	DeleteChargeBox(id string) error
	AddConnector(connector *models.Connector) error
	UpdateConnector(connector *models.Connector) error
	AddTransaction(transaction *models.Transaction) error
	UpdateTransaction(transaction *models.Transaction) error
	GetTransaction(id int) (*models.Transaction, error)
	GetLastTransaction() (*models.Transaction, error)
	GetUserTag(idTag string) (*models.UserTag, error)
	AddUserTag(userTag *models.UserTag) error
}

type Data interface {
	DataType() string
}
