// Package notify turns push payloads and sync results into notifications
// and delivers them to log output and to connected pages.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultTitle  = "Berbagi Story"
	DefaultBody   = "Ada cerita baru!"
	DefaultIcon   = "./icons/icon-192x192.png"
	DefaultBadge  = "./icons/icon-96x96.png"
	DefaultTag    = "story-notification"
	DefaultURL    = "./#/stories"
	pushTitle     = "Cerita Baru"
	pushBody      = "Ada cerita baru yang dibagikan!"
	syncDoneTitle = "Sinkronisasi Selesai"

	ActionOpen  = "open"
	ActionClose = "close"
)

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

type Data struct {
	URL     string `json:"url"`
	StoryID string `json:"storyId,omitempty"`
}

type Notification struct {
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	Icon               string   `json:"icon,omitempty"`
	Badge              string   `json:"badge,omitempty"`
	Image              string   `json:"image,omitempty"`
	Tag                string   `json:"tag,omitempty"`
	Data               Data     `json:"data"`
	Actions            []Action `json:"actions,omitempty"`
	RequireInteraction bool     `json:"requireInteraction"`
	Vibrate            []int    `json:"vibrate,omitempty"`
}

type pushPayload struct {
	Title   text `json:"title"`
	Body    text `json:"body"`
	Message text `json:"message"`
	Icon    text `json:"icon"`
	Image   text `json:"image"`
	Tag     text `json:"tag"`
	URL     text `json:"url"`
	StoryID text `json:"storyId"`
}

// text is a push field that decodes from a string, a number or a bool.
// Any other JSON value leaves it empty so that field falls back alone.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		*t = text(v)
	case float64, bool:
		*t = text(strings.TrimSpace(string(b)))
	default:
		*t = ""
	}
	return nil
}

func defaultNotification() Notification {
	return Notification{
		Title: DefaultTitle,
		Body:  DefaultBody,
		Icon:  DefaultIcon,
		Badge: DefaultBadge,
		Tag:   DefaultTag,
		Data:  Data{URL: DefaultURL},
	}
}

// ParsePush builds the notification for a push payload. An empty or
// unparsable payload yields the generic notification.
func ParsePush(raw []byte) Notification {
	var p pushPayload
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return defaultNotification()
	}

	return Notification{
		Title: or(string(p.Title), pushTitle),
		Body:  or(string(p.Body), string(p.Message), pushBody),
		Icon:  or(string(p.Icon), DefaultIcon),
		Badge: DefaultBadge,
		Image: string(p.Image),
		Tag:   or(string(p.Tag), DefaultTag),
		Data:  Data{URL: or(string(p.URL), DefaultURL), StoryID: string(p.StoryID)},
		Actions: []Action{
			{Action: ActionOpen, Title: "Lihat Detail", Icon: DefaultBadge},
			{Action: ActionClose, Title: "Tutup", Icon: DefaultBadge},
		},
		Vibrate: []int{200, 100, 200},
	}
}

// SyncSummary is shown once per sync batch; n is the batch size at start.
func SyncSummary(n int) Notification {
	return Notification{
		Title: syncDoneTitle,
		Body:  fmt.Sprintf("%d cerita berhasil disinkronkan", n),
		Icon:  DefaultIcon,
		Badge: DefaultBadge,
		Data:  Data{URL: DefaultURL},
	}
}

// ClickTarget returns the URL to open for a click on n, or false when the
// click only dismisses the notification.
func ClickTarget(action string, n Notification) (string, bool) {
	if action == ActionClose {
		return "", false
	}
	return or(n.Data.URL, DefaultURL), true
}

func or(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
