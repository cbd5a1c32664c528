package searchgate

import (
	"context"
	"fmt"
	"sync"
)

// Notice messages raised after a submit.
const (
	MessageSaved  = "Search fields & weighting saved."
	MessageFailed = "Whoops! Something went wrong. Please try again."
)

// NoticeKind is the severity of a Notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-visible message raised by the Editor.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Saver persists weighting settings and returns the stored form.
// *Client implements it.
type Saver interface {
	SaveWeighting(ctx context.Context, s Settings) (Settings, error)
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithNotifier receives the notice raised after each submit.
func WithNotifier(fn func(Notice)) EditorOption {
	return func(e *Editor) { e.notify = fn }
}

// WithSettled is called once a submit has finished, whatever the outcome.
// UIs use it to scroll back to the top of the form.
func WithSettled(fn func()) EditorOption {
	return func(e *Editor) { e.settled = fn }
}

// Editor holds a draft of the weighting settings next to the last saved copy.
// It is safe for concurrent use.
type Editor struct {
	saver   Saver
	catalog Catalog

	mu      sync.Mutex
	current Settings
	saved   Settings
	busy    bool

	notify  func(Notice)
	settled func()
}

// NewEditor creates an editor whose draft and saved copies both start at
// initial, filled with catalog defaults.
func NewEditor(saver Saver, catalog Catalog, initial Settings, opts ...EditorOption) *Editor {
	s := initial.Normalize(catalog)
	e := &Editor{
		saver:   saver,
		catalog: catalog,
		current: s.Clone(),
		saved:   s,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// LoadEditor fetches the stored settings and catalog and builds an Editor on them.
func LoadEditor(ctx context.Context, c *Client, opts ...EditorOption) (*Editor, error) {
	st, err := c.Weighting(ctx)
	if err != nil {
		return nil, fmt.Errorf("load editor: %w", err)
	}
	return NewEditor(c, st.Catalog, st.Settings, opts...), nil
}

// Catalog returns the weightable fields.
func (e *Editor) Catalog() Catalog { return e.catalog }

// Current returns a copy of the draft.
func (e *Editor) Current() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// Saved returns a copy of the last saved settings.
func (e *Editor) Saved() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved.Clone()
}

// IsBusy reports whether a submit is in flight.
func (e *Editor) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// IsChanged reports whether the draft differs from the saved copy.
func (e *Editor) IsChanged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.current.Equal(e.saved)
}

// ShowMeta reports whether metadata fields are weighted by hand.
func (e *Editor) ShowMeta() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.MetaMode == MetaModeManual
}

// ChangeMetaMode switches the draft to manual when checked, auto otherwise.
func (e *Editor) ChangeMetaMode(checked bool) {
	mode := MetaModeAuto
	if checked {
		mode = MetaModeManual
	}
	e.mu.Lock()
	e.current.MetaMode = mode
	e.mu.Unlock()
}

// ChangePostType replaces the draft weights of one post type. values must be
// the full field set; nothing is merged.
func (e *Editor) ChangePostType(postType string, values Fields) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current.Weighting == nil {
		e.current.Weighting = make(Configuration)
	}
	e.current.Weighting[postType] = values.Clone()
}

// Reset discards the draft.
func (e *Editor) Reset() {
	e.mu.Lock()
	e.current = e.saved.Clone()
	e.mu.Unlock()
}

// Submit saves the draft. Only one submit runs at a time; a call made while
// another is in flight returns ErrSubmitInFlight without sending anything.
// The request is not cancelled with ctx once sent.
//
// On success the saved copy becomes the server's answer and the draft is
// kept. On failure neither copy changes. The returned error is the save error.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	e.busy = true
	body := e.current.Clone()
	e.mu.Unlock()

	saved, err := e.saver.SaveWeighting(context.WithoutCancel(ctx), body)

	e.mu.Lock()
	if err == nil {
		e.saved = saved.Clone()
	}
	e.busy = false
	e.mu.Unlock()

	if err != nil {
		e.raise(Notice{Kind: NoticeError, Message: MessageFailed})
	} else {
		e.raise(Notice{Kind: NoticeSuccess, Message: MessageSaved})
	}
	if e.settled != nil {
		e.settled()
	}
	return err
}

func (e *Editor) raise(n Notice) {
	if e.notify != nil {
		e.notify(n)
	}
}
