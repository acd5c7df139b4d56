package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
	internal_errors "github.com/prolearn/prolearn/shared/errors"
	"github.com/prolearn/prolearn/shared/logger"
	"github.com/prolearn/prolearn/shared/validation"
)

var (
	ErrSubmitInFlight  = errors.New("a submission is already in progress")
	ErrEditorClosed    = errors.New("editor is closed")
	ErrIndexOutOfRange = errors.New("no staged attachment at that index")
	ErrUnknownCategory = errors.New("unknown category")
)

const (
	msgCreateFailed = "Failed to create post. Please try again."
	msgUpdateFailed = "Failed to update post. Please try again."
	msgIncomplete   = "Title and category are required."
	msgUnreadable   = "Post saved but the response could not be read."
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

type ErrorKind string

const (
	KindValidation ErrorKind = "validation-error"
	KindNetwork    ErrorKind = "network-error"
	KindServer     ErrorKind = "server-error"
)

// SubmitError is the single user-facing message of a failed submit.
type SubmitError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Err        error     `json:"-"`
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

// PostAPI is the part of the backend client a submit needs.
type PostAPI interface {
	CreatePost(ctx context.Context, post api.PostRequest, media []api.Upload) (*domain.Post, error)
	UpdatePost(ctx context.Context, id int64, post api.PostRequest, retained []int64, media []api.Upload) (*domain.Post, error)
}

// Config wires an Editor to its collaborators. Prober may be nil to skip duration checks.
type Config struct {
	Limits   validation.Limits
	Types    validation.AllowedTypes
	Previews Previewer
	Prober   DurationProber
	API      PostAPI
}

// Payload is the snapshot sent by one submit attempt.
type Payload struct {
	Mode           Mode
	PostID         int64
	Post           api.PostRequest
	RetainMediaIDs []int64
	Files          []api.Upload
}

// Action is an event applied through the reducer.
type Action interface{ action() }

type (
	SetTitle       struct{ Title string }
	SetDescription struct{ Description string }
	SetCategory    struct{ Category domain.Category }
	AddFiles       struct{ Files []File }
	RemoveStaged   struct{ Index int }
	ToggleRetain   struct{ ID int64 }

	probeResolved struct {
		batch   Batch
		tooLong []string
	}
	submitStarted   struct{}
	submitSucceeded struct{ post *domain.Post }
	submitFailed    struct{ err *SubmitError }
)

func (SetTitle) action()        {}
func (SetDescription) action()  {}
func (SetCategory) action()     {}
func (AddFiles) action()        {}
func (RemoveStaged) action()    {}
func (ToggleRetain) action()    {}
func (probeResolved) action()   {}
func (submitStarted) action()   {}
func (submitSucceeded) action() {}
func (submitFailed) action()    {}

// effects are produced under the editor lock and executed outside it.
type effect interface{ effect() }

type (
	startProbe  struct{ batch Batch }
	sendPayload struct{ payload Payload }
)

func (startProbe) effect()  {}
func (sendPayload) effect() {}

type state struct {
	mode   Mode
	postID int64
	draft  PostDraft
	set    *AttachmentSet
	phase  Phase
	err    *SubmitError
	notice string
	result *domain.Post
	closed bool
	limits validation.Limits
	log    *slog.Logger
}

// reduce is the only place editor state changes.
func reduce(st *state, a Action) ([]effect, error) {
	if st.closed {
		return nil, ErrEditorClosed
	}

	switch a := a.(type) {
	case SetTitle:
		st.draft.Title = a.Title
	case SetDescription:
		st.draft.Description = a.Description
	case SetCategory:
		if a.Category != "" && !a.Category.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, a.Category)
		}
		st.draft.Category = a.Category

	case AddFiles:
		if st.phase == PhaseSubmitting {
			return nil, ErrSubmitInFlight
		}
		batch, err := st.set.AddStaged(a.Files)
		if err != nil {
			attachmentRejectionsTotal.WithLabelValues(validation.Reason(err)).Inc()
			st.notice = err.Error()
			return nil, err
		}
		st.notice = ""
		if len(batch.Videos) > 0 {
			return []effect{startProbe{batch: batch}}, nil
		}
	case RemoveStaged:
		if st.phase == PhaseSubmitting {
			return nil, ErrSubmitInFlight
		}
		if a.Index < 0 || a.Index >= len(st.set.staged) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, a.Index)
		}
		st.set.RemoveStaged(a.Index)
		st.notice = ""
	case ToggleRetain:
		if st.phase == PhaseSubmitting {
			return nil, ErrSubmitInFlight
		}
		if err := st.set.ToggleRetain(a.ID); err != nil {
			if !errors.Is(err, ErrUnknownAttachment) {
				attachmentRejectionsTotal.WithLabelValues(validation.Reason(err)).Inc()
				st.notice = err.Error()
			}
			return nil, err
		}
		st.notice = ""

	case probeResolved:
		if a.batch.Generation != st.set.Generation() {
			st.log.Info("dropping stale duration probe",
				"batch", a.batch.ID, "probed_generation", a.batch.Generation, "current_generation", st.set.Generation())
			return nil, nil
		}
		if len(a.tooLong) == 0 {
			return nil, nil
		}
		removed := st.set.removeBatch(a.batch.ID)
		attachmentRejectionsTotal.WithLabelValues(validation.Reason(validation.ErrVideoTooLong)).Inc()
		st.notice = fmt.Sprintf("Video must be under %.0f seconds", st.limits.MaxVideoDuration.Seconds())
		st.log.Info("rejected batch after duration probe", "batch", a.batch.ID, "files", a.tooLong, "removed", removed)

	case submitStarted:
		if st.phase == PhaseSubmitting {
			return nil, ErrSubmitInFlight
		}
		if err := st.draft.validate(); err != nil {
			msg := err.Error()
			if errors.Is(err, errDraftIncomplete) {
				msg = msgIncomplete
			}
			st.err = &SubmitError{Kind: KindValidation, Message: msg, Err: err}
			return nil, st.err
		}
		st.phase = PhaseSubmitting
		st.err = nil
		st.result = nil
		return []effect{sendPayload{payload: st.payload()}}, nil
	case submitSucceeded:
		st.phase = PhaseSucceeded
		st.result = a.post
		st.err = nil
		st.notice = ""
		st.draft = PostDraft{}
		st.set.Clear()
		switch {
		case a.post == nil:
			// saved upstream; nothing to show and nothing to resend
			st.notice = msgUnreadable
		case st.mode == ModeEdit:
			st.draft = draftFrom(a.post)
			st.set.Hydrate(a.post.Media)
		}
	case submitFailed:
		st.phase = PhaseFailed
		st.err = a.err

	default:
		return nil, fmt.Errorf("compose: unhandled action %T", a)
	}
	return nil, nil
}

func (st *state) payload() Payload {
	p := Payload{Mode: st.mode, PostID: st.postID, Post: st.draft.request(), Files: []api.Upload{}}
	for _, s := range st.set.staged {
		p.Files = append(p.Files, api.Upload{Filename: s.File.Name, ContentType: s.File.ContentType, Data: s.File.Data})
	}
	if st.mode == ModeEdit {
		p.RetainMediaIDs = st.set.RetainedIDs()
	}
	return p
}

// Editor is one open post form. All events of one editor are applied serially.
type Editor struct {
	id  string
	cfg Config
	log *slog.Logger

	mu sync.Mutex
	st state

	// ctx bounds background probes only; submits outlive it.
	ctx    context.Context
	cancel context.CancelFunc
	probes sync.WaitGroup
}

// NewCreateEditor opens an empty editor for a new post.
func NewCreateEditor(cfg Config) *Editor {
	return newEditor(cfg, ModeCreate, nil)
}

// NewEditEditor opens an editor hydrated from post: draft fields filled in, every media retained.
func NewEditEditor(cfg Config, post *domain.Post) *Editor {
	return newEditor(cfg, ModeEdit, post)
}

func newEditor(cfg Config, mode Mode, post *domain.Post) *Editor {
	id := uuid.NewString()
	log := logger.For("editor").With("editor_id", id, "mode", mode.String())
	ctx, cancel := context.WithCancel(context.Background())

	e := &Editor{id: id, cfg: cfg, log: log, ctx: ctx, cancel: cancel}
	e.st = state{
		mode:   mode,
		set:    NewAttachmentSet(cfg.Limits, cfg.Types, cfg.Previews, log),
		limits: cfg.Limits,
		log:    log,
	}
	if post != nil {
		e.st.postID = post.Id
		e.st.draft = draftFrom(post)
		e.st.set.Hydrate(post.Media)
	}
	return e
}

func (e *Editor) ID() string { return e.id }

func (e *Editor) Mode() Mode { return e.st.mode }

// Dispatch applies a user event and runs the effects it produced.
func (e *Editor) Dispatch(a Action) error {
	e.mu.Lock()
	effects, err := reduce(&e.st, a)
	e.mu.Unlock()

	for _, eff := range effects {
		if p, ok := eff.(startProbe); ok {
			e.startProbe(p.batch)
		}
	}
	return err
}

func (e *Editor) startProbe(b Batch) {
	if e.cfg.Prober == nil {
		return
	}
	e.probes.Add(1)
	go func() {
		defer e.probes.Done()
		var tooLong []string
		for _, f := range b.Videos {
			d, known := e.cfg.Prober.Probe(e.ctx, f)
			if !known {
				e.log.Debug("video duration unknown, accepting", "file", f.Name)
				continue
			}
			if d > e.cfg.Limits.MaxVideoDuration {
				tooLong = append(tooLong, f.Name)
			}
		}
		if err := e.Dispatch(probeResolved{batch: b, tooLong: tooLong}); errors.Is(err, ErrEditorClosed) {
			e.log.Debug("editor closed before probe resolved", "batch", b.ID)
		}
	}()
}

// AwaitProbes blocks until every started duration probe has resolved.
func (e *Editor) AwaitProbes(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.probes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit sends the current draft and staged files exactly once.
// The network call is detached from ctx cancellation: leaving the page does not abort it,
// but once the editor is closed its completion no longer touches editor state.
// A nil post with a nil error means the backend accepted the post but its reply was unreadable.
func (e *Editor) Submit(ctx context.Context) (*domain.Post, error) {
	e.mu.Lock()
	effects, err := reduce(&e.st, submitStarted{})
	mode := e.st.mode
	e.mu.Unlock()

	if err != nil {
		var se *SubmitError
		if errors.As(err, &se) {
			submissionsTotal.WithLabelValues(mode.String(), string(se.Kind)).Inc()
		}
		return nil, err
	}

	var payload Payload
	for _, eff := range effects {
		if s, ok := eff.(sendPayload); ok {
			payload = s.payload
		}
	}

	post, err := e.send(context.WithoutCancel(ctx), payload)

	var completion Action
	outcome := "success"
	switch {
	case errors.Is(err, internal_errors.ErrUndecodableResponse):
		e.log.Warn("submit accepted but response unreadable", "error", err)
		completion = submitSucceeded{}
		post, err = nil, nil
	case err != nil:
		se := classify(mode, err)
		e.log.Error("submit failed", "kind", se.Kind, "status", se.StatusCode, "error", err)
		completion = submitFailed{err: se}
		outcome = string(se.Kind)
		err = se
	default:
		e.log.Info("submit succeeded", "post_id", post.Id)
		completion = submitSucceeded{post: post}
	}
	submissionsTotal.WithLabelValues(mode.String(), outcome).Inc()

	if derr := e.Dispatch(completion); errors.Is(derr, ErrEditorClosed) {
		e.log.Info("editor closed while submitting, result dropped", "outcome", outcome)
	}
	return post, err
}

func (e *Editor) send(ctx context.Context, p Payload) (*domain.Post, error) {
	if p.Mode == ModeEdit {
		return e.cfg.API.UpdatePost(ctx, p.PostID, p.Post, p.RetainMediaIDs, p.Files)
	}
	return e.cfg.API.CreatePost(ctx, p.Post, p.Files)
}

// classify maps a failed API call onto the user-facing taxonomy.
func classify(mode Mode, err error) *SubmitError {
	fallback := msgCreateFailed
	if mode == ModeEdit {
		fallback = msgUpdateFailed
	}
	var withStatus *internal_errors.ErrorWithStatusCode
	if errors.As(err, &withStatus) {
		msg := withStatus.Message
		if msg == "" {
			msg = fallback
		}
		return &SubmitError{Kind: KindServer, Message: msg, StatusCode: withStatus.StatusCode, Err: err}
	}
	return &SubmitError{Kind: KindNetwork, Message: fallback, Err: err}
}

// Close tears the editor down and releases every preview. It is safe to call more than once.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.st.closed {
		e.mu.Unlock()
		return
	}
	e.st.set.Clear()
	e.st.closed = true
	e.mu.Unlock()
	e.cancel()
}

type StagedView struct {
	Index   int              `json:"index"`
	Name    string           `json:"name"`
	Kind    domain.MediaKind `json:"type"`
	Size    int64            `json:"size"`
	Preview PreviewHandle    `json:"preview"`
	Width   *int             `json:"width,omitempty"`
	Height  *int             `json:"height,omitempty"`
}

type ExistingView struct {
	ID        int64            `json:"id"`
	Kind      domain.MediaKind `json:"type"`
	RemoteRef string           `json:"remoteRef"`
	Retained  bool             `json:"retained"`
}

// View is a consistent snapshot of the editor for rendering.
type View struct {
	ID       string         `json:"id"`
	Mode     Mode           `json:"mode"`
	PostID   int64          `json:"postId,omitempty"`
	Phase    Phase          `json:"phase"`
	Draft    PostDraft      `json:"draft"`
	Staged   []StagedView   `json:"staged"`
	Existing []ExistingView `json:"existing"`
	Counts   Counts         `json:"counts"`
	CanAdd   bool           `json:"canAdd"`
	Error    *SubmitError   `json:"error,omitempty"`
	Notice   string         `json:"notice,omitempty"`
	Result   *domain.Post   `json:"result,omitempty"`
	Closed   bool           `json:"closed"`
}

func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := &e.st
	v := View{
		ID:       e.id,
		Mode:     st.mode,
		PostID:   st.postID,
		Phase:    st.phase,
		Draft:    st.draft,
		Staged:   []StagedView{},
		Existing: []ExistingView{},
		Counts:   st.set.Counts(),
		CanAdd:   !st.closed && st.phase != PhaseSubmitting && st.set.CanAdd(),
		Error:    st.err,
		Notice:   st.notice,
		Result:   st.result,
		Closed:   st.closed,
	}
	for i, s := range st.set.staged {
		v.Staged = append(v.Staged, StagedView{
			Index: i, Name: s.File.Name, Kind: s.Kind, Size: s.File.Size(),
			Preview: s.Preview, Width: s.Width, Height: s.Height,
		})
	}
	for _, x := range st.set.existing {
		v.Existing = append(v.Existing, ExistingView{ID: x.ID, Kind: x.Kind, RemoteRef: x.RemoteRef, Retained: x.Retained})
	}
	return v
}
