package event

import (
	"container/list"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// TypeMessageUpdated is emitted when a message's state changes.
	TypeMessageUpdated = "message.updated"
	// TypeMessagePartUpdated is emitted when a single message part changes.
	TypeMessagePartUpdated = "message.part.updated"
)

// Outcome is the tracker's verdict on one event.
type Outcome struct {
	// Deliver is false for transient placeholders that must not reach the
	// replay buffer or any subscriber.
	Deliver bool
	// CompletedID is the message id when this event triggered a new turn
	// completion, "" otherwise.
	CompletedID string
}

type messageMeta struct {
	modelID string
	mode    string
}

// Tracker watches the normalized event stream for turn completions. It keeps
// a bounded per-message metadata cache, suppresses empty assistant
// placeholders, deduplicates completion signals, and fires the injected
// Notifier at most once per message id.
//
// Tracker is not safe for concurrent use; it belongs to the single stream
// goroutine.
type Tracker struct {
	log      zerolog.Logger
	notifier Notifier

	lastNotified string
	maxEntries   int
	meta         map[string]messageMeta
	order        *list.List // message ids, oldest first
	index        map[string]*list.Element
}

// NewTracker creates a Tracker. maxEntries bounds the metadata cache;
// values <= 0 fall back to 1024.
func NewTracker(n Notifier, maxEntries int, log zerolog.Logger) *Tracker {
	if n == nil {
		n = NopNotifier{}
	}
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Tracker{
		log:        log,
		notifier:   n,
		maxEntries: maxEntries,
		meta:       make(map[string]messageMeta),
		order:      list.New(),
		index:      make(map[string]*list.Element),
	}
}

// Observe inspects one normalized event, updating the metadata cache and
// firing a notification when a not-yet-notified completion is detected.
func (t *Tracker) Observe(ev Event) Outcome {
	switch ev.Type {
	case TypeMessageUpdated:
		return t.observeMessage(ev)
	case TypeMessagePartUpdated:
		return t.observePart(ev)
	default:
		return Outcome{Deliver: true}
	}
}

func (t *Tracker) observeMessage(ev Event) Outcome {
	props := gjson.GetBytes(ev.Raw, "properties")
	id := firstString(props, "id", "info.id")
	if id != "" {
		t.merge(id, props)
	}

	// Empty assistant messages are transient placeholders the upstream
	// rewrites moments later; forwarding them would blank the UI.
	role := firstString(props, "role", "info.role")
	parts := firstArray(props, "parts", "info.parts")
	if role == "assistant" && len(parts) == 0 {
		t.log.Debug().Str("id", id).Msg("dropping empty assistant message")
		return Outcome{Deliver: false}
	}

	if id == "" {
		return Outcome{Deliver: true}
	}

	completed := firstString(props, "status", "info.status") == "completed"
	if !completed {
		for _, p := range parts {
			if p.Get("type").String() == "step-finish" && p.Get("reason").String() == "stop" {
				completed = true
				break
			}
		}
	}
	if !completed {
		return Outcome{Deliver: true}
	}
	// Metadata may ride on the completing event itself.
	t.merge(id, props)
	return Outcome{Deliver: true, CompletedID: t.notify(id)}
}

func (t *Tracker) observePart(ev Event) Outcome {
	part := gjson.GetBytes(ev.Raw, "properties.part")
	if part.Get("type").String() != "step-finish" || part.Get("reason").String() != "stop" {
		return Outcome{Deliver: true}
	}
	id := part.Get("messageID").String()
	if id == "" {
		id = part.Get("message_id").String()
	}
	if id == "" {
		return Outcome{Deliver: true}
	}
	return Outcome{Deliver: true, CompletedID: t.notify(id)}
}

// notify fires the notification for id unless it already fired. It returns
// id when a notification was sent, "" otherwise.
func (t *Tracker) notify(id string) string {
	if id == t.lastNotified {
		return ""
	}
	t.lastNotified = id

	m := t.meta[id]
	title := FormatMode(m.mode) + " agent is ready"
	body := FormatModel(m.modelID) + " completed the task"
	t.log.Info().Str("id", id).Str("title", title).Msg("turn completed")
	t.notifier.Notify(title, body)
	return id
}

// merge folds newly present modelID/mode fields into the cached metadata for
// id. Known values are never regressed to empty, so the merge is commutative
// with respect to arrival order.
func (t *Tracker) merge(id string, props gjson.Result) {
	model := firstString(props, "info.modelID", "message.info.modelID")
	mode := firstString(props, "info.mode", "message.info.mode")
	if model == "" && mode == "" {
		return
	}

	cur, ok := t.meta[id]
	if model != "" {
		cur.modelID = model
	}
	if mode != "" {
		cur.mode = mode
	}
	t.meta[id] = cur
	if ok {
		return
	}

	t.index[id] = t.order.PushBack(id)
	for t.order.Len() > t.maxEntries {
		oldest := t.order.Front()
		old := oldest.Value.(string)
		t.order.Remove(oldest)
		delete(t.index, old)
		delete(t.meta, old)
	}
}

func firstString(props gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := props.Get(p); v.Exists() {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstArray(props gjson.Result, paths ...string) []gjson.Result {
	for _, p := range paths {
		if v := props.Get(p); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}
