package api

import (
	"encoding/json"
)

type Story struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photoUrl"`
	CreatedAt   string   `json:"createdAt"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

// ListOptions maps to the page, size and location query parameters.
type ListOptions struct {
	Page     int
	Size     int
	Location bool
}

// NewStory is the multipart payload of POST /stories.
type NewStory struct {
	Description string
	Photo       []byte
	PhotoType   string
	Lat         *float64
	Lon         *float64
}

type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// envelope is the common shape of every API answer. Optional payloads are
// decoded lazily by the endpoint that expects them.
type envelope struct {
	Error       *bool           `json:"error"`
	Message     string          `json:"message"`
	ListStory   []Story         `json:"listStory"`
	Story       *Story          `json:"story"`
	LoginResult *LoginResult    `json:"loginResult"`
	Data        json.RawMessage `json:"data"`
	Token       string          `json:"token"`
}

// loginResult normalizes the login answer. "loginResult" is the documented
// shape; a "data" object or a top-level token are accepted from older
// deployments.
func (e *envelope) loginResult() (*LoginResult, bool) {
	if e.LoginResult != nil && e.LoginResult.Token != "" {
		return e.LoginResult, true
	}
	if len(e.Data) > 0 {
		var lr LoginResult
		if err := json.Unmarshal(e.Data, &lr); err == nil && lr.Token != "" {
			return &lr, true
		}
	}
	if e.Token != "" {
		return &LoginResult{Token: e.Token}, true
	}
	return nil, false
}
