package models

type UserTag struct {
	IdTag     string `json:"id_tag" bson:"id_tag"`
	IsEnabled bool   `json:"is_enabled" bson:"is_enabled"`
	Username  string `json:"username" bson:"username"`
	Note      string `json:"note" bson:"note"`
}

func (t *UserTag) DataType() string {
	return "userTag"
}
