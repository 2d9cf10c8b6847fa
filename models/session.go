package models

// Exchange is one completed user/assistant pair in a conversation
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
